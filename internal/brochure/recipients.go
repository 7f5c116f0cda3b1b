package brochure

import "github.com/geoirb/go-brochure/internal/render"

// BuildRecipients orders recipients: every RU one, then every EN one, input
// order kept. Sequence starts at 1.
func BuildRecipients(ru, en []string) []render.Recipient {
	res := make([]render.Recipient, 0, len(ru)+len(en))
	add := func(passwords []string, lang render.Language) {
		for _, p := range passwords {
			res = append(res, render.Recipient{
				Password: p,
				Language: lang,
				Sequence: len(res) + 1,
			})
		}
	}
	add(ru, render.RU)
	add(en, render.EN)
	return res
}
