package ats

import "strings"

// actionVerbs are strong bullet openers recruiters and ATS scorers look for.
var actionVerbs = toSet(`
accelerated achieved acquired adapted administered advised analyzed architected
assembled assessed audited authored automated built championed clarified
coached collaborated completed composed conceived conducted configured
consolidated constructed consulted contributed converted coordinated created
cultivated cut debugged decreased defined delivered deployed designed
developed devised diagnosed directed discovered doubled drafted drove
eliminated enabled engineered enhanced established evaluated executed
expanded expedited facilitated forecast formulated founded generated grew
guided halved headed identified implemented improved increased initiated
innovated inspected installed instituted integrated introduced invented
investigated launched led leveraged maintained managed mentored merged
migrated minimized modeled modernized monitored negotiated optimized
orchestrated organized overhauled oversaw partnered performed piloted
pioneered planned prepared presented prioritized produced programmed
proposed prototyped provisioned published raised rebuilt reduced refactored
redesigned reengineered released remodeled reorganized replaced researched
resolved restructured revamped reviewed scaled secured simplified shipped
solved spearheaded standardized steered streamlined strengthened supervised
supported surpassed tested trained transformed tripled troubleshot tuned
unified upgraded validated wrote
`)

// weakOpeners start bullets that describe duties rather than results.
var weakOpeners = toSet(`responsible helped assisted worked participated involved tasked handled duties`)

func toSet(words string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}
