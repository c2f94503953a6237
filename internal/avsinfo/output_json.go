package avsinfo

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RenderJSON renders reports as creation-ordered JSON: object keys keep
// the field order the parsers produced them in.
func RenderJSON(reports []Report) string {
	var buf bytes.Buffer
	if len(reports) == 1 {
		writeJSONReport(&buf, reports[0], "")
	} else {
		buf.WriteString("[\n")
		for i, report := range reports {
			if i > 0 {
				buf.WriteString(",\n")
			}
			writeJSONReport(&buf, report, "  ")
		}
		buf.WriteString("\n]")
	}
	buf.WriteString("\n")
	return buf.String()
}

func writeJSONReport(buf *bytes.Buffer, report Report, indent string) {
	buf.WriteString(indent + "{\n")
	buf.WriteString(indent + "  \"creatingLibrary\": {\n")
	writeJSONKV(buf, indent+"    ", "name", AppName, true)
	writeJSONKV(buf, indent+"    ", "version", FormatVersion(AppVersion), true)
	writeJSONKV(buf, indent+"    ", "url", AppURL, false)
	buf.WriteString(indent + "  },\n")
	buf.WriteString(indent + "  \"media\": {\n")
	writeJSONKV(buf, indent+"    ", "@ref", report.Ref, true)
	buf.WriteString(indent + "    \"track\": [\n")
	tracks := append([]Stream{report.General}, report.Streams...)
	for i, stream := range tracks {
		writeJSONTrack(buf, stream, indent+"      ")
		if i < len(tracks)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString(indent + "    ]\n")
	buf.WriteString(indent + "  }\n")
	buf.WriteString(indent + "}")
}

func writeJSONTrack(buf *bytes.Buffer, stream Stream, indent string) {
	buf.WriteString(indent + "{\n")
	writeJSONKV(buf, indent+"  ", "@type", string(stream.Kind), len(stream.Fields) > 0)
	for i, field := range stream.Fields {
		writeJSONKV(buf, indent+"  ", jsonFieldKey(field.Name), field.Value, i < len(stream.Fields)-1)
	}
	buf.WriteString(indent + "}")
}

func writeJSONKV(buf *bytes.Buffer, indent, key, value string, comma bool) {
	keyJSON, _ := json.Marshal(key)
	valueJSON, _ := json.Marshal(value)
	buf.Write([]byte(indent))
	buf.Write(keyJSON)
	buf.WriteString(": ")
	buf.Write(valueJSON)
	if comma {
		buf.WriteString(",")
	}
	buf.WriteString("\n")
}

// jsonFieldKey turns a display field name into a CamelCase JSON key.
func jsonFieldKey(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '(' || r == ')' || r == '/' || r == ','
	})
	var builder strings.Builder
	for _, part := range parts {
		builder.WriteString(strings.ToUpper(part[:1]))
		builder.WriteString(part[1:])
	}
	return builder.String()
}
