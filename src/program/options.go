package program

// ConfigPatch is a partial update of the mutable campaign fields. The
// zero value of each field means "leave unchanged"; an explicit
// SetBool(false) or SetU64(0) still updates the field. The two are never
// conflated because the sentinel is a tag, not a value.
type ConfigPatch struct {
	Active       OptionalBool
	MaxClaimers  OptionalU64
	RewardAmount OptionalU64
}

// IsEmpty reports whether the patch changes nothing.
func (p ConfigPatch) IsEmpty() bool {
	return !p.Active.set && !p.MaxClaimers.set && !p.RewardAmount.set
}

// OptionalBool is Unchanged until built with SetBool.
type OptionalBool struct {
	set   bool
	value bool
}

func SetBool(v bool) OptionalBool {
	return OptionalBool{set: true, value: v}
}

func (o OptionalBool) ptr() *bool {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// OptionalU64 is Unchanged until built with SetU64.
type OptionalU64 struct {
	set   bool
	value uint64
}

func SetU64(v uint64) OptionalU64 {
	return OptionalU64{set: true, value: v}
}

func (o OptionalU64) ptr() *uint64 {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}
