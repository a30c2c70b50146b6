package ir

import "strconv"

// InferTyId is a placeholder for a type that is solved during inference.
// Ids are handed out in increasing order and never reused within one inference pass,
// so their numeric order is also their allocation order.
type InferTyId uint32

func (id InferTyId) Successor() InferTyId { return id + 1 }
func (id InferTyId) String() string      { return "?" + strconv.FormatUint(uint64(id), 10) }

// InferFunctorId is a placeholder for a functor set that is solved during inference.
type InferFunctorId uint32

func (id InferFunctorId) Successor() InferFunctorId { return id + 1 }
func (id InferFunctorId) String() string           { return "f?" + strconv.FormatUint(uint64(id), 10) }

// ParamId is the position of a generic parameter inside its Scheme.
type ParamId uint32

func (id ParamId) String() string { return strconv.FormatUint(uint64(id), 10) }

// ItemId identifies a user-defined type item.
type ItemId struct {
	Package uint32
	Item    uint32
}

func (id ItemId) String() string {
	return strconv.FormatUint(uint64(id.Package), 10) + ":" + strconv.FormatUint(uint64(id.Item), 10)
}

// Res is the resolution of a name referring to a user-defined type.
// The zero value is the error resolution, produced when name resolution failed:
// it behaves as a wildcard during inference.
type Res struct {
	item ItemId
	ok   bool
}

var ResErr = Res{}

func ResItem(id ItemId) Res { return Res{item: id, ok: true} }

// Item returns the resolved item, or false if this is the error resolution
func (r Res) Item() (ItemId, bool) { return r.item, r.ok }
func (r Res) IsErr() bool          { return !r.ok }

func (r Res) String() string {
	if !r.ok {
		return "Err"
	}
	return "Item " + r.item.String()
}
