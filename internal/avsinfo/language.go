package avsinfo

import "strings"

// ISO 639-2 codes seen in broadcast PMTs, mapped to display names. AVS
// services are overwhelmingly Chinese-language, so the table leans that
// way but keeps the common international codes.
var languageNames = map[string]string{
	"chi": "Chinese",
	"zho": "Chinese",
	"cmn": "Mandarin Chinese",
	"yue": "Cantonese",
	"eng": "English",
	"jpn": "Japanese",
	"kor": "Korean",
	"fra": "French",
	"fre": "French",
	"deu": "German",
	"ger": "German",
	"spa": "Spanish",
	"por": "Portuguese",
	"rus": "Russian",
	"ita": "Italian",
	"tha": "Thai",
	"vie": "Vietnamese",
	"mul": "Multiple",
}

func languageName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || code == "und" {
		return ""
	}
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}
