package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstbilling/pkg/config"
)

func TestResolveConfigStrictJSON(t *testing.T) {
	d := ResolveConfig(`{"dbname": "tenant_acme", "host": "db.example.com", "port": "5433"}`)
	require.NotNil(t, d)
	assert.Equal(t, "tenant_acme", d.DBName)
	assert.Equal(t, "db.example.com", d.Host)
	assert.Equal(t, "5433", d.Port)
}

func TestResolveConfigRelaxedLiteral(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		dbname string
	}{
		{
			name:   "unquoted keys and single quotes",
			raw:    `{dbname: 'tenant_acme', host: 'localhost'}`,
			dbname: "tenant_acme",
		},
		{
			name:   "embedded in surrounding text",
			raw:    `const cfg = {dbname: 'x', other: 1}; export default cfg;`,
			dbname: "x",
		},
		{
			name:   "trailing comma",
			raw:    `{"dbname": "tenant_acme",}`,
			dbname: "tenant_acme",
		},
		{
			name:   "mixed quoting with newlines",
			raw:    "{\n  dbname: \"tenant_acme\",\n  sslmode: 'require',\n}",
			dbname: "tenant_acme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ResolveConfig(tt.raw)
			require.NotNil(t, d)
			assert.Equal(t, tt.dbname, d.DBName)
		})
	}
}

func TestResolveConfigUnusableInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
		{"null literal", "null"},
		{"empty object", "{}"},
		{"object without dbname", `{"host": "localhost"}`},
		{"no object at all", "not a config"},
		{"unbalanced braces", "{dbname: "},
		{"plain number", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ResolveConfig(tt.raw))
		})
	}
}

func TestResolveConfigNeverPanics(t *testing.T) {
	// Garbage with quote and brace fragments must come back nil, not panic.
	inputs := []string{
		`{'`, `{"dbname": "a`, "{,,,}", `{a:}`, "{'dbname': }", "}{",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { ResolveConfig(in) }, "input %q", in)
	}
}

func TestDescriptorDSNDefaults(t *testing.T) {
	defaults := &config.DBConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "secret",
		SSLMode:  "disable",
	}

	d := &Descriptor{DBName: "tenant_acme"}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=tenant_acme sslmode=disable",
		d.DSN(defaults))

	d = &Descriptor{DBName: "tenant_acme", Host: "db.acme.in", User: "acme", SSLMode: "require"}
	assert.Equal(t,
		"host=db.acme.in port=5432 user=acme password=secret dbname=tenant_acme sslmode=require",
		d.DSN(defaults))
}
