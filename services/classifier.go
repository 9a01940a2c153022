package services

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"leads-dashboard/models"
)

// LaunchProjects are named developments that count as their own category.
// Keys are upper-cased; values are the display names used in summaries.
var LaunchProjects = map[string]string{
	"WIND OCEANICA":     "Wind Oceanica",
	"TRESOR CAMBOINHAS": "Tresor Camboinhas",
}

// launchOrder fixes the iteration order of LaunchProjects for reports.
var launchOrder = []string{"WIND OCEANICA", "TRESOR CAMBOINHAS"}

var prefixRules = []struct {
	prefix string
	kind   models.PropertyType
}{
	{"CA", models.Casa},
	{"AP", models.Apartamento},
	{"TR", models.Terreno},
	{"CO", models.Comercial},
}

// keywordRules are checked in order; the first rule with any hit wins.
var keywordRules = []struct {
	words []string
	kind  models.PropertyType
}{
	{[]string{"CASA"}, models.Casa},
	{[]string{"APARTAMENTO", "APT"}, models.Apartamento},
	{[]string{"TERRENO"}, models.Terreno},
	{[]string{"COMERCIAL", "LOJA", "SALA"}, models.Comercial},
	{[]string{"LANÇAMENTO", "LANCAMENTO"}, models.Lancamento},
}

// normaliseReference upper-cases and trims a reference for matching.
// A Caser is stateful, so each call gets its own.
func normaliseReference(ref string) string {
	return strings.TrimSpace(cases.Upper(language.BrazilianPortuguese).String(ref))
}

// Classify infers the property type from a free-text reference.
// Prefix rules run before keyword rules, so "CA..." is always a Casa.
func Classify(reference string) models.PropertyType {
	if reference == "" {
		return models.Indefinido
	}

	ref := normaliseReference(reference)

	for _, r := range prefixRules {
		if strings.HasPrefix(ref, r.prefix) {
			return r.kind
		}
	}

	if _, ok := LaunchProjects[ref]; ok {
		return models.Lancamento
	}

	for _, r := range keywordRules {
		for _, w := range r.words {
			if strings.Contains(ref, w) {
				return r.kind
			}
		}
	}

	return models.Outros
}

// launchProject returns the display name of the launch project a reference
// names exactly, or "".
func launchProject(reference string) string {
	return LaunchProjects[normaliseReference(reference)]
}
