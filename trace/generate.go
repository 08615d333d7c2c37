package trace

import (
	"fmt"
	"math/rand/v2"

	sketcherrors "github.com/tamirms/flowsketch/errors"
	intbits "github.com/tamirms/flowsketch/internal/bits"
)

// Workload describes a synthetic lost-packet stream: a fraction of flows are
// victims, and every lost packet belongs to a uniformly chosen victim.
type Workload struct {
	FlowIDRange     int     // flow IDs are 1..FlowIDRange
	VictimFlowRatio float64 // fraction of flows that lose packets
	PacketLossRate  float64 // lost packets per PacketsPerFlow
	PacketsPerFlow  int
}

// DefaultWorkload returns a workload over flowIDRange flows with 20% victims
// and 1000 lost packets.
func DefaultWorkload(flowIDRange int) Workload {
	return Workload{
		FlowIDRange:     flowIDRange,
		VictimFlowRatio: 0.2,
		PacketLossRate:  0.1,
		PacketsPerFlow:  10000,
	}
}

// Victims returns the number of victim flows.
func (w Workload) Victims() int { return int(float64(w.FlowIDRange) * w.VictimFlowRatio) }

// Packets returns the number of lost packets in the stream.
func (w Workload) Packets() int { return int(float64(w.PacketsPerFlow) * w.PacketLossRate) }

func (w Workload) validate() error {
	switch {
	case w.FlowIDRange < 1:
		return fmt.Errorf("%w: flow ID range %d", sketcherrors.ErrInvalidWorkload, w.FlowIDRange)
	case w.VictimFlowRatio <= 0 || w.VictimFlowRatio > 1:
		return fmt.Errorf("%w: victim ratio %v", sketcherrors.ErrInvalidWorkload, w.VictimFlowRatio)
	case w.PacketLossRate < 0:
		return fmt.Errorf("%w: loss rate %v", sketcherrors.ErrInvalidWorkload, w.PacketLossRate)
	case w.PacketsPerFlow < 0:
		return fmt.Errorf("%w: packets per flow %d", sketcherrors.ErrInvalidWorkload, w.PacketsPerFlow)
	case w.Victims() < 1:
		return fmt.Errorf("%w: no victim flows", sketcherrors.ErrInvalidWorkload)
	}
	return nil
}

// Generate produces the lost-packet stream for w as a sequence of flow IDs.
// The same seed and workload always give the same stream.
func Generate(seed uint64, w Workload) ([]uint64, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(seed, intbits.SplitMix64(seed)))

	// Partial Fisher-Yates over 1..FlowIDRange picks distinct victims.
	ids := make([]uint64, w.FlowIDRange)
	for i := range ids {
		ids[i] = uint64(i + 1)
	}
	victims := w.Victims()
	for i := 0; i < victims; i++ {
		j := i + rng.IntN(len(ids)-i)
		ids[i], ids[j] = ids[j], ids[i]
	}
	ids = ids[:victims]

	stream := make([]uint64, w.Packets())
	for i := range stream {
		stream[i] = ids[rng.IntN(victims)]
	}
	rng.Shuffle(len(stream), func(i, j int) { stream[i], stream[j] = stream[j], stream[i] })
	return stream, nil
}

// Aggregate folds a stream into per-key totals.
func Aggregate(stream []uint64) map[uint64]uint64 {
	counts := make(map[uint64]uint64)
	for _, key := range stream {
		counts[key]++
	}
	return counts
}
