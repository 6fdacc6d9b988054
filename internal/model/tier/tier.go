package tier

import "encoding/json"

// Tier is the access level a session resolves to at login.
type Tier int

const (
	Unresolved Tier = iota
	Child
	Silver
	Gold
	Platinum
)

// secrets is the closed login mapping. Keys match exactly, no trimming or case folding.
var secrets = map[string]Tier{
	"0000": Child,
	"2222": Silver,
	"5555": Gold,
	"7777": Platinum,
}

// Resolve maps a login secret to its tier. Unknown secrets stay Unresolved.
func Resolve(secret string) Tier {
	if t, ok := secrets[secret]; ok {
		return t
	}
	return Unresolved
}

// Resolved reports whether the tier permits chat turns.
func (t Tier) Resolved() bool {
	return t >= Child && t <= Platinum
}

// Adult reports whether the tier belongs to the Silver/Gold/Platinum family.
func (t Tier) Adult() bool {
	return t == Silver || t == Gold || t == Platinum
}

// Parse converts a tier name back to a Tier; used by tooling, not by login.
func Parse(name string) (Tier, bool) {
	for t := Child; t <= Platinum; t++ {
		if t.String() == name {
			return t, true
		}
	}
	return Unresolved, false
}

func (t Tier) String() string {
	switch t {
	case Child:
		return "child"
	case Silver:
		return "silver"
	case Gold:
		return "gold"
	case Platinum:
		return "platinum"
	default:
		return "unresolved"
	}
}

// MarshalJSON renders the tier by name.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}
