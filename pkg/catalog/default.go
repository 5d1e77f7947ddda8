package catalog

import "github.com/aretw0/reportflow/pkg/domain"

func reason(value, label, prompt string, subs ...domain.Subcategory) domain.Category {
	return domain.Category{
		Value:         value,
		Label:         domain.Msg(label),
		Prompt:        domain.Msg(prompt),
		Subcategories: subs,
	}
}

func sub(value, label, prompt string) domain.Subcategory {
	return domain.Subcategory{
		Value:  value,
		Label:  domain.Msg(label),
		Prompt: domain.Msg(prompt),
	}
}

func deadEnd(s domain.Subcategory) domain.Subcategory {
	s.PreventSubmission = true
	return s
}

// builtin mirrors the reasons the report backend understands.
// Values are backend category codes, so their order is not numeric.
var builtin = domain.MustCatalog([]domain.Category{
	reason("", "report.reasonPlaceHolder", "report.promptPlaceholder"),
	reason("0", "report.reasonCopy", "report.promptCopy"),
	reason("1", "report.reasonUncredited", "report.promptUncredited"),
	reason("2", "report.reasonScary", "report.promptScary"),
	reason("3", "report.reasonLanguage", "report.promptLanguage"),
	reason("4", "report.reasonMusic", "report.promptMusic"),
	reason("8", "report.reasonImage", "report.promptImage"),
	reason("5", "report.reasonPersonal", "report.promptPersonal",
		sub("", "report.reasonPlaceHolder", "report.promptPlaceholder"),
		deadEnd(sub("4", "report.reasonMusic", "report.promptMusic")),
		sub("8", "report.reasonImage", "report.promptImage"),
		sub("5", "report.reasonPersonal", "report.promptPersonal"),
		sub("6", "general.other", "report.promptPersonal"),
	),
	reason("6", "general.other", "report.promptGuidelines"),
})

// Default returns the built-in report reasons.
func Default() *domain.Catalog {
	return builtin
}
