package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanDropsEmptySequences(t *testing.T) {
	fn := (&FunctionDescriptor{
		Name:       "getAll",
		Type:       TypeFunction,
		Parameters: []*PropertyDescriptor{},
		Static:     Bool(false),
	}).Clean()

	assert.Nil(t, fn.Parameters)
	require.NotNil(t, fn.Static, "false is a value, not an absence")
	assert.False(t, *fn.Static)

	data, err := json.Marshal(fn)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"getAll","type":"function","static":false}`, string(data))
}

func TestCleanReturnsCopy(t *testing.T) {
	orig := &TypeDescriptor{ID: "MyEnum", Type: TypeString, Enum: []string{}}
	cleaned := orig.Clean()

	assert.NotSame(t, orig, cleaned)
	assert.NotNil(t, orig.Enum, "input must not be modified")
	assert.Nil(t, cleaned.Enum)
}

func TestCleanIsIdempotent(t *testing.T) {
	tests := []struct {
		name  string
		clean func() (interface{}, interface{})
	}{
		{
			name: "property",
			clean: func() (interface{}, interface{}) {
				once := (&PropertyDescriptor{Name: "cb", Type: TypeFunction, Optional: Bool(true), Parameters: []*PropertyDescriptor{}}).Clean()
				return once, once.Clean()
			},
		},
		{
			name: "type",
			clean: func() (interface{}, interface{}) {
				once := (&TypeDescriptor{ID: "Point", Type: TypeObject, Properties: PropertyMap{}}).Clean()
				return once, once.Clean()
			},
		},
		{
			name: "namespace",
			clean: func() (interface{}, interface{}) {
				once := (&Namespace{Namespace: "alarms", Types: []*TypeDescriptor{}, Events: []*FunctionDescriptor{}}).Clean()
				return once, once.Clean()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once, twice := tt.clean()
			assert.Equal(t, once, twice)
		})
	}
}

func TestEmptyPropertiesEncodeAsObject(t *testing.T) {
	empty := (&TypeDescriptor{ID: "Empty", Type: TypeObject, Properties: PropertyMap{}}).Clean()
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"Empty","type":"object","properties":{}}`, string(data))

	enum := (&TypeDescriptor{ID: "MyEnum", Type: TypeString, Enum: []string{"rock"}}).Clean()
	data, err = json.Marshal(enum)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"MyEnum","type":"string","enum":["rock"]}`, string(data))
}

func TestPropertyDescriptorEncoding(t *testing.T) {
	d := &PropertyDescriptor{
		Name:  "ids",
		Type:  TypeArray,
		Items: &PropertyDescriptor{Ref: "IdObject"},
	}
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ids","type":"array","items":{"$ref":"IdObject"}}`, string(data))
}

func TestCloneIsDeep(t *testing.T) {
	orig := &PropertyDescriptor{
		Name:     "callback",
		Type:     TypeFunction,
		Optional: Bool(true),
		Parameters: []*PropertyDescriptor{
			{Name: "status", Type: TypeInteger},
			{Name: "points", Type: TypeArray, Items: &PropertyDescriptor{Ref: "Point"}},
		},
	}
	cp := orig.Clone()
	require.Equal(t, orig, cp)

	cp.Parameters[0].Name = "changed"
	cp.Parameters[1].Items.Ref = "Other"
	*cp.Optional = false

	assert.Equal(t, "status", orig.Parameters[0].Name)
	assert.Equal(t, "Point", orig.Parameters[1].Items.Ref)
	assert.True(t, *orig.Optional)
}

func TestCloneParametersPreservesNil(t *testing.T) {
	assert.Nil(t, CloneParameters(nil))
	assert.NotNil(t, CloneParameters([]*PropertyDescriptor{}))
}
