package usecase

import "strings"

const (
	FieldName  = "name"
	FieldPhone = "phone"
	FieldEmail = "email"
)

// headerAliases lists the accepted header spellings for each canonical field, already folded.
var headerAliases = map[string][]string{
	FieldName:  {"name", "full name", "contact name"},
	FieldPhone: {"phone", "number", "mobile", "phone number"},
	FieldEmail: {"email", "e-mail"},
}

var aliasIndex = buildAliasIndex(headerAliases)

func buildAliasIndex(aliases map[string][]string) map[string]string {
	idx := make(map[string]string)
	for field, variants := range aliases {
		for _, v := range variants {
			idx[v] = field
		}
	}
	return idx
}

// CanonicalField resolves a raw header to name, phone or email.
func CanonicalField(header string) (string, bool) {
	field, ok := aliasIndex[foldHeader(header)]
	return field, ok
}

func foldHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

type NormalizedRow struct {
	Name           string            `json:"name"`
	Phone          string            `json:"phone"`
	Email          string            `json:"email"`
	AdditionalData map[string]string `json:"additional_data,omitempty"`
}

// NormalizeRow maps one parsed row onto the canonical schema. Headers are walked in file order
// so the first non-empty value wins when several columns alias the same field.
func NormalizeRow(headers []string, raw map[string]string) NormalizedRow {
	var row NormalizedRow

	for _, h := range headers {
		value := raw[h]
		field, ok := CanonicalField(h)
		if !ok {
			if row.AdditionalData == nil {
				row.AdditionalData = make(map[string]string)
			}
			row.AdditionalData[h] = value
			continue
		}

		v := strings.TrimSpace(value)
		switch field {
		case FieldName:
			if row.Name == "" {
				row.Name = v
			}
		case FieldPhone:
			if row.Phone == "" {
				row.Phone = v
			}
		case FieldEmail:
			if row.Email == "" {
				row.Email = v
			}
		}
	}
	return row
}

// sanitizeRow re-applies normalization to a row sent back by the client: canonical values are
// trimmed and extra keys that alias a canonical field are dropped.
func sanitizeRow(row NormalizedRow) NormalizedRow {
	out := NormalizedRow{
		Name:  strings.TrimSpace(row.Name),
		Phone: strings.TrimSpace(row.Phone),
		Email: strings.TrimSpace(row.Email),
	}
	for k, v := range row.AdditionalData {
		if _, canonical := CanonicalField(k); canonical {
			continue
		}
		if out.AdditionalData == nil {
			out.AdditionalData = make(map[string]string)
		}
		out.AdditionalData[k] = v
	}
	return out
}
