package activity

import (
	"fmt"
	"slices"
	"strings"
)

// Payload carries the category-specific details of a record. Exactly one
// variant is set, and it must match the record's category.
type Payload struct {
	Bathroom   *BathroomData   `json:"bathroom,omitempty"`
	Sleep      *SleepData      `json:"sleep,omitempty"`
	Activities *ActivitiesData `json:"activities,omitempty"`
	Food       *FoodData       `json:"food,omitempty"`
	Needs      *NeedsData      `json:"needs,omitempty"`
}

// BathroomData records a diaper or potty check. NoVoid excludes the others.
type BathroomData struct {
	Urinated bool `json:"urinated"`
	BM       bool `json:"bm"`
	NoVoid   bool `json:"no_void"`
}

// Nap describes how much of a nap was taken.
type Nap string

const (
	NapFull    Nap = "full"
	NapPartial Nap = "partial"
	NapNone    Nap = "none"
)

// SleepData records a nap.
type SleepData struct {
	Nap Nap `json:"nap"`
}

// Amount is how much of a food item was eaten.
type Amount string

const (
	AmountAll  Amount = "All"
	AmountSome Amount = "Some"
	AmountNone Amount = "None"
)

// FoodData records one food item.
type FoodData struct {
	Item   string `json:"item"`
	Amount Amount `json:"amount"`
}

// Need is a supply the parent is asked to bring.
type Need string

const (
	NeedDiapers      Need = "Diapers"
	NeedWipes        Need = "Wipes"
	NeedExtraClothes Need = "Extra Clothes"
	NeedSnacks       Need = "Snacks"
	NeedOther        Need = "Other"
)

// KnownNeeds lists the needs in display order.
var KnownNeeds = []Need{NeedDiapers, NeedWipes, NeedExtraClothes, NeedSnacks, NeedOther}

// NeedsData records the supplies a child is running low on.
type NeedsData struct {
	Items       []Need `json:"items"`
	OtherDetail string `json:"other_detail,omitempty"`
}

// Summary renders the needs the way they read on a daily sheet,
// e.g. "Diapers, Other: sunscreen".
func (n *NeedsData) Summary() string {
	parts := make([]string, 0, len(n.Items))
	for _, item := range n.Items {
		if item == NeedOther && n.OtherDetail != "" {
			parts = append(parts, "Other: "+n.OtherDetail)
			continue
		}
		parts = append(parts, string(item))
	}
	return strings.Join(parts, ", ")
}

// ActivityKind is the kind of play or learning activity.
type ActivityKind string

const (
	KindToys        ActivityKind = "Toys"
	KindGames       ActivityKind = "Games"
	KindOutdoorPlay ActivityKind = "Outdoor Play"
	KindArtCrafts   ActivityKind = "Art/Crafts"
	KindMusic       ActivityKind = "Music/Singing"
	KindBooks       ActivityKind = "Books"
	KindOther       ActivityKind = "Other Activity"
)

// KnownActivityKinds lists the activity kinds in display order.
var KnownActivityKinds = []ActivityKind{
	KindToys, KindGames, KindOutdoorPlay, KindArtCrafts, KindMusic, KindBooks, KindOther,
}

// ActivitiesData records a play or learning activity.
type ActivitiesData struct {
	Kind   ActivityKind `json:"kind"`
	Detail string       `json:"detail,omitempty"`
}

// Clone returns a deep copy of the payload.
func (p Payload) Clone() Payload {
	var out Payload
	if p.Bathroom != nil {
		v := *p.Bathroom
		out.Bathroom = &v
	}
	if p.Sleep != nil {
		v := *p.Sleep
		out.Sleep = &v
	}
	if p.Activities != nil {
		v := *p.Activities
		out.Activities = &v
	}
	if p.Food != nil {
		v := *p.Food
		out.Food = &v
	}
	if p.Needs != nil {
		v := *p.Needs
		v.Items = slices.Clone(p.Needs.Items)
		out.Needs = &v
	}
	return out
}

func (p Payload) variants() int {
	n := 0
	for _, set := range []bool{p.Bathroom != nil, p.Sleep != nil, p.Activities != nil, p.Food != nil, p.Needs != nil} {
		if set {
			n++
		}
	}
	return n
}

// Validate checks that the payload holds exactly the variant for category and
// that the variant's own constraints hold.
func (p Payload) Validate(category Category) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if p.variants() != 1 {
		return fmt.Errorf("%w: exactly one payload variant required", ErrInvalidPayload)
	}

	switch category {
	case CategoryBathroom:
		b := p.Bathroom
		if b == nil {
			return payloadMismatch(category)
		}
		if !b.Urinated && !b.BM && !b.NoVoid {
			return fmt.Errorf("%w: bathroom needs urinated, bm or no_void", ErrInvalidPayload)
		}
		if b.NoVoid && (b.Urinated || b.BM) {
			return fmt.Errorf("%w: no_void excludes urinated and bm", ErrInvalidPayload)
		}
	case CategorySleep:
		if p.Sleep == nil {
			return payloadMismatch(category)
		}
		switch p.Sleep.Nap {
		case NapFull, NapPartial, NapNone:
		default:
			return fmt.Errorf("%w: unknown nap %q", ErrInvalidPayload, p.Sleep.Nap)
		}
	case CategoryActivities:
		if p.Activities == nil {
			return payloadMismatch(category)
		}
		if !slices.Contains(KnownActivityKinds, p.Activities.Kind) {
			return fmt.Errorf("%w: unknown activity kind %q", ErrInvalidPayload, p.Activities.Kind)
		}
	case CategoryFood:
		if p.Food == nil {
			return payloadMismatch(category)
		}
		if strings.TrimSpace(p.Food.Item) == "" {
			return fmt.Errorf("%w: food item required", ErrInvalidPayload)
		}
		switch p.Food.Amount {
		case AmountAll, AmountSome, AmountNone:
		default:
			return fmt.Errorf("%w: unknown amount %q", ErrInvalidPayload, p.Food.Amount)
		}
	case CategoryNeeds:
		n := p.Needs
		if n == nil {
			return payloadMismatch(category)
		}
		if len(n.Items) == 0 {
			return fmt.Errorf("%w: at least one need required", ErrInvalidPayload)
		}
		seen := make(map[Need]bool, len(n.Items))
		for _, item := range n.Items {
			if !slices.Contains(KnownNeeds, item) {
				return fmt.Errorf("%w: unknown need %q", ErrInvalidPayload, item)
			}
			if seen[item] {
				return fmt.Errorf("%w: duplicate need %q", ErrInvalidPayload, item)
			}
			seen[item] = true
		}
		if n.OtherDetail != "" && !seen[NeedOther] {
			return fmt.Errorf("%w: other_detail only allowed with %q", ErrInvalidPayload, NeedOther)
		}
	}
	return nil
}

func payloadMismatch(category Category) error {
	return fmt.Errorf("%w: payload does not match category %s", ErrInvalidPayload, category)
}
