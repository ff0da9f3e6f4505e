package listing

// Internal condition grades as recorded in the catalog.
const (
	GradeNew       = 1
	GradeNewOther  = 2
	GradeExcellent = 3
	GradeParts     = 4
)

// conditionIDs maps internal condition grades to marketplace condition
// enumeration values.
var conditionIDs = map[int]string{
	GradeNew:       "NEW",
	GradeNewOther:  "NEW_OTHER",
	GradeExcellent: "USED_EXCELLENT",
	GradeParts:     "FOR_PARTS_OR_NOT_WORKING",
}

// conditionDescriptions provides the default human-readable condition text
// when the catalog record carries no note of its own.
var conditionDescriptions = map[int]string{
	GradeNew:       "Brand new in original packaging.",
	GradeNewOther:  "New and unused, open box or missing original packaging.",
	GradeExcellent: "Gently used and fully functional, with only light cosmetic wear.",
	GradeParts:     "Sold for parts or repair. Not guaranteed to function.",
}

func conditionID(grade int) string {
	if id, ok := conditionIDs[grade]; ok {
		return id
	}
	return "USED_EXCELLENT"
}

func conditionDescription(grade int, note string) string {
	if note != "" {
		return note
	}
	if text, ok := conditionDescriptions[grade]; ok {
		return text
	}
	return conditionDescriptions[GradeExcellent]
}
