package partitions

import (
	"fmt"
)

// Partition is a contiguous slab of x planes swept by one worker. Slabs never
// overlap, so each field cell has exactly one writer per half step.
type Partition struct {
	// Unique identifier for this partition
	ID int

	// Plane membership, global x indices [Start, End)
	Start       int
	End         int
	NumElements int // Planes in this slab
}

// PartitionLayout manages the decomposition of an x index range into slabs
type PartitionLayout struct {
	// All partitions in the box
	Partitions []Partition

	// Global sizing information
	KpartMax      int // max(NumElements) across all partitions
	TotalElements int // Sum of all planes across partitions
	NumPartitions int // Total number of partitions

	// Plane to partition mapping, relative to Lo
	Lo   int
	EToP []int
}

// NewSlabLayout splits the planes [lo, hi) into at most numPartitions slabs
// whose sizes differ by at most one plane.
func NewSlabLayout(lo, hi, numPartitions int) (*PartitionLayout, error) {
	total := hi - lo
	if total <= 0 {
		return nil, fmt.Errorf("empty plane range [%d, %d)", lo, hi)
	}
	if numPartitions < 1 {
		return nil, fmt.Errorf("invalid partition count %d", numPartitions)
	}
	if numPartitions > total {
		numPartitions = total
	}

	base, extra := total/numPartitions, total%numPartitions
	layout := &PartitionLayout{
		Partitions:    make([]Partition, numPartitions),
		TotalElements: total,
		NumPartitions: numPartitions,
		Lo:            lo,
		EToP:          make([]int, total),
	}

	start := lo
	for p := 0; p < numPartitions; p++ {
		n := base
		if p < extra {
			n++
		}
		layout.Partitions[p] = Partition{ID: p, Start: start, End: start + n, NumElements: n}
		for i := start; i < start+n; i++ {
			layout.EToP[i-lo] = p
		}
		if n > layout.KpartMax {
			layout.KpartMax = n
		}
		start += n
	}

	if err := layout.ValidateLayout(); err != nil {
		return nil, fmt.Errorf("invalid partition layout: %w", err)
	}
	return layout, nil
}

// GetPartition returns the partition containing plane i, or -1
func (pl *PartitionLayout) GetPartition(i int) int {
	if i < pl.Lo || i-pl.Lo >= len(pl.EToP) {
		return -1
	}
	return pl.EToP[i-pl.Lo]
}

// ValidateLayout checks partition consistency
func (pl *PartitionLayout) ValidateLayout() error {
	if len(pl.Partitions) != pl.NumPartitions {
		return fmt.Errorf("have %d partitions, expected %d", len(pl.Partitions), pl.NumPartitions)
	}
	actualMax, covered := 0, 0
	next := pl.Lo
	for _, p := range pl.Partitions {
		if p.Start != next {
			return fmt.Errorf("partition %d: starts at %d, expected %d", p.ID, p.Start, next)
		}
		if p.End-p.Start != p.NumElements || p.NumElements <= 0 {
			return fmt.Errorf("partition %d: bad extent [%d, %d) with %d planes",
				p.ID, p.Start, p.End, p.NumElements)
		}
		if p.NumElements > actualMax {
			actualMax = p.NumElements
		}
		covered += p.NumElements
		next = p.End
	}
	if actualMax != pl.KpartMax {
		return fmt.Errorf("computed KpartMax %d != stored KpartMax %d", actualMax, pl.KpartMax)
	}
	if covered != pl.TotalElements {
		return fmt.Errorf("partitions cover %d planes, expected %d", covered, pl.TotalElements)
	}
	return nil
}
