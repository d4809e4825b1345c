package tenant

import (
	"encoding/json"
	"fmt"
	"strings"

	"gstbilling/pkg/config"
)

// Descriptor is a validated per-company connection descriptor. DBName is the
// identifying field; everything else falls back to the service defaults.
type Descriptor struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

// ResolveConfig parses a vendor-supplied configuration blob into a
// Descriptor. Strict JSON is tried first; failing that, the substring
// between the first '{' and the last '}' is run through a relaxed
// normalizer that tolerates unquoted keys, single quotes and trailing
// commas. Input that yields no object with a dbname returns nil: absent
// configuration is an expected state, not an error.
func ResolveConfig(raw string) *Descriptor {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if d := parseDescriptor(raw); d != nil {
		return d
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil
	}

	return parseDescriptor(normalizeRelaxed(raw[start : end+1]))
}

func parseDescriptor(s string) *Descriptor {
	var d Descriptor
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return nil
	}
	if d.DBName == "" {
		return nil
	}
	return &d
}

// DSN renders the descriptor as a PostgreSQL connection string, filling
// unset fields from the service database defaults.
func (d *Descriptor) DSN(defaults *config.DBConfig) string {
	host := d.Host
	if host == "" {
		host = defaults.Host
	}
	port := d.Port
	if port == "" {
		port = defaults.Port
	}
	user := d.User
	if user == "" {
		user = defaults.User
	}
	password := d.Password
	if password == "" {
		password = defaults.Password
	}
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = defaults.SSLMode
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, d.DBName, sslMode)
}

// normalizeRelaxed rewrites a loose object literal into strict JSON: bare
// keys get quoted, single-quoted strings become double-quoted and trailing
// commas are dropped. It is a plain text transform; nothing is evaluated.
func normalizeRelaxed(in string) string {
	var out strings.Builder
	out.Grow(len(in) + 16)

	for i := 0; i < len(in); {
		c := in[i]
		switch {
		case c == '"' || c == '\'':
			quote := c
			out.WriteByte('"')
			i++
			for i < len(in) && in[i] != quote {
				if in[i] == '\\' && i+1 < len(in) {
					out.WriteByte(in[i])
					out.WriteByte(in[i+1])
					i += 2
					continue
				}
				if in[i] == '"' {
					// double quote inside a single-quoted string
					out.WriteString(`\"`)
					i++
					continue
				}
				out.WriteByte(in[i])
				i++
			}
			i++ // closing quote
			out.WriteByte('"')
		case c == ',':
			j := i + 1
			for j < len(in) && isSpace(in[j]) {
				j++
			}
			if j < len(in) && (in[j] == '}' || in[j] == ']') {
				// trailing comma
				i++
				continue
			}
			out.WriteByte(c)
			i++
		case isIdentStart(c):
			j := i + 1
			for j < len(in) && isIdentPart(in[j]) {
				j++
			}
			word := in[i:j]
			k := j
			for k < len(in) && isSpace(in[k]) {
				k++
			}
			if k < len(in) && in[k] == ':' {
				out.WriteByte('"')
				out.WriteString(word)
				out.WriteByte('"')
			} else {
				out.WriteString(word)
			}
			i = j
		default:
			out.WriteByte(c)
			i++
		}
	}

	return out.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
