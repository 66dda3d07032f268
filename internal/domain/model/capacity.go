package model

// UnlimitedSentinel is how the database encodes "no limit" on a plan column.
// It never leaks past the repository layer; everything above works with Capacity.
const UnlimitedSentinel int32 = 1<<31 - 1

// Capacity is a plan limit that is either a concrete count or unlimited.
// Keeping it tagged avoids accidental arithmetic on the stored sentinel.
type Capacity struct {
	n         int32
	unlimited bool
}

func Limited(n int32) Capacity {
	if n < 0 {
		n = 0
	}
	return Capacity{n: n}
}

func Unlimited() Capacity { return Capacity{unlimited: true} }

// CapacityFromStored maps a raw database value to a Capacity.
func CapacityFromStored(n int32) Capacity {
	if n == UnlimitedSentinel {
		return Unlimited()
	}
	return Limited(n)
}

func (c Capacity) IsUnlimited() bool { return c.unlimited }

// Limit returns the concrete count; only meaningful when not unlimited.
func (c Capacity) Limit() int32 { return c.n }

// Stored returns the database encoding of the capacity.
func (c Capacity) Stored() int32 {
	if c.unlimited {
		return UnlimitedSentinel
	}
	return c.n
}

// Allows reports whether one more unit fits given the current count.
func (c Capacity) Allows(current int) bool {
	return c.unlimited || current < int(c.n)
}
