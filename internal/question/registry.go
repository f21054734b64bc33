package question

// Tier controls default visibility of a question type in the generator UI.
type Tier string

const (
	TierCore        Tier = "core"        // always enabled, cannot be disabled
	TierExtended    Tier = "extended"    // enabled by default, user-togglable
	TierSpecialized Tier = "specialized" // disabled by default, user-togglable
)

// InteractionKind selects the QTI interaction element a type serializes to.
type InteractionKind string

const (
	InteractionChoice          InteractionKind = "choice"
	InteractionTextEntry       InteractionKind = "textEntry"
	InteractionInlineChoice    InteractionKind = "inlineChoice"
	InteractionOrder           InteractionKind = "order"
	InteractionHottext         InteractionKind = "hottext"
	InteractionMatch           InteractionKind = "match"
	InteractionGapMatch        InteractionKind = "gapMatch"
	InteractionGraphicGapMatch InteractionKind = "graphicGapMatch"
	InteractionExtendedText    InteractionKind = "extendedText"
)

// SchemaTypeLongText is the generic long-text type every question without
// native downstream support collapses to.
const SchemaTypeLongText = "longtextV2"

// TypeDef is the static metadata for one supported question type. Every
// encoder consults this table instead of branching on type ids inline.
type TypeDef struct {
	ID               string
	Tier             Tier
	SchemaType       string // type name in the downstream JSON schema
	Interaction      InteractionKind
	HasOptions       bool
	HasCorrectAnswer bool
	SupportsRubric   bool
}

var typeDefs = []TypeDef{
	// core
	{ID: "mcq", Tier: TierCore, SchemaType: "mcq", Interaction: InteractionChoice, HasOptions: true, HasCorrectAnswer: true},
	{ID: "true_false", Tier: TierCore, SchemaType: "mcq", Interaction: InteractionChoice, HasOptions: true, HasCorrectAnswer: true},
	{ID: "short_answer", Tier: TierCore, SchemaType: SchemaTypeLongText, Interaction: InteractionExtendedText, HasCorrectAnswer: true, SupportsRubric: true},
	{ID: "essay", Tier: TierCore, SchemaType: SchemaTypeLongText, Interaction: InteractionExtendedText, SupportsRubric: true},

	// extended
	{ID: "multiple_response", Tier: TierExtended, SchemaType: "mcq", Interaction: InteractionChoice, HasOptions: true, HasCorrectAnswer: true},
	{ID: "fill_blank", Tier: TierExtended, SchemaType: SchemaTypeLongText, Interaction: InteractionTextEntry, HasCorrectAnswer: true},
	{ID: "matching", Tier: TierExtended, SchemaType: SchemaTypeLongText, Interaction: InteractionMatch, HasOptions: true, HasCorrectAnswer: true},
	{ID: "ordering", Tier: TierExtended, SchemaType: SchemaTypeLongText, Interaction: InteractionOrder, HasOptions: true, HasCorrectAnswer: true},
	{ID: "hotspot", Tier: TierExtended, SchemaType: SchemaTypeLongText, Interaction: InteractionExtendedText, HasOptions: true, HasCorrectAnswer: true},
	{ID: "rating", Tier: TierExtended, SchemaType: SchemaTypeLongText, Interaction: InteractionExtendedText, HasOptions: true},

	// specialized
	{ID: "choicematrix", Tier: TierSpecialized, SchemaType: SchemaTypeLongText, Interaction: InteractionMatch, HasOptions: true, HasCorrectAnswer: true},
	{ID: "clozedropdown", Tier: TierSpecialized, SchemaType: SchemaTypeLongText, Interaction: InteractionInlineChoice, HasOptions: true, HasCorrectAnswer: true},
	{ID: "clozetext", Tier: TierSpecialized, SchemaType: SchemaTypeLongText, Interaction: InteractionTextEntry, HasCorrectAnswer: true},
	{ID: "clozeassociation", Tier: TierSpecialized, SchemaType: SchemaTypeLongText, Interaction: InteractionGapMatch, HasOptions: true, HasCorrectAnswer: true},
	{ID: "tokenhighlight", Tier: TierSpecialized, SchemaType: SchemaTypeLongText, Interaction: InteractionHottext, HasCorrectAnswer: true},
	{ID: "imageclozeassociationV2", Tier: TierSpecialized, SchemaType: SchemaTypeLongText, Interaction: InteractionGraphicGapMatch, HasOptions: true, HasCorrectAnswer: true},
	{ID: "orderlist", Tier: TierSpecialized, SchemaType: SchemaTypeLongText, Interaction: InteractionOrder, HasOptions: true, HasCorrectAnswer: true},
	{ID: "longtextV2", Tier: TierSpecialized, SchemaType: SchemaTypeLongText, Interaction: InteractionExtendedText, SupportsRubric: true},
	{ID: "plaintext", Tier: TierSpecialized, SchemaType: SchemaTypeLongText, Interaction: InteractionExtendedText, SupportsRubric: true},
	{ID: "formulaessayV2", Tier: TierSpecialized, SchemaType: SchemaTypeLongText, Interaction: InteractionExtendedText, SupportsRubric: true},
	{ID: "chemistryessayV2", Tier: TierSpecialized, SchemaType: SchemaTypeLongText, Interaction: InteractionExtendedText, SupportsRubric: true},
}

var typeByID = func() map[string]TypeDef {
	m := make(map[string]TypeDef, len(typeDefs))
	for _, d := range typeDefs {
		m[d.ID] = d
	}
	return m
}()

// Lookup returns the definition for a type id. Unrecognized ids fall back to
// an essay-like long-text definition carrying the requested id, so export
// never fails merely because a question has an unknown or legacy type.
func Lookup(id string) TypeDef {
	if d, ok := typeByID[id]; ok {
		return d
	}
	return TypeDef{
		ID:             id,
		Tier:           TierSpecialized,
		SchemaType:     SchemaTypeLongText,
		Interaction:    InteractionExtendedText,
		SupportsRubric: true,
	}
}

// AllTypes returns every definition in declaration order.
func AllTypes() []TypeDef {
	out := make([]TypeDef, len(typeDefs))
	copy(out, typeDefs)
	return out
}

// TypesByTier returns the definitions of one tier, in declaration order.
func TypesByTier(t Tier) []TypeDef {
	var out []TypeDef
	for _, d := range typeDefs {
		if d.Tier == t {
			out = append(out, d)
		}
	}
	return out
}

// CoreTypeIDs lists the ids that are force-enabled regardless of user
// preference.
func CoreTypeIDs() []string {
	var out []string
	for _, d := range typeDefs {
		if d.Tier == TierCore {
			out = append(out, d.ID)
		}
	}
	return out
}

// DefaultEnabledTypeIDs lists the ids enabled without any user opt-in
// (core plus extended).
func DefaultEnabledTypeIDs() []string {
	var out []string
	for _, d := range typeDefs {
		if d.Tier == TierCore || d.Tier == TierExtended {
			out = append(out, d.ID)
		}
	}
	return out
}
