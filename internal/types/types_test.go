package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igfraga/go-conflake/internal/ast"
)

func TestMangling(t *testing.T) {
	tests := []struct {
		name    string
		ty      Type
		mangled string
		desc    string
	}{
		{"real", Real(), "real", "real"},
		{"integer", Integer(), "integer", "integer"},
		{"boolean", Boolean(), "boolean", "boolean"},
		{"list of integer", NewList(Integer()), "__list_integer", "list<integer>"},
		{"nested list", NewList(NewList(Real())), "__list___list_real", "list<list<real>>"},
		{
			"function real real to real",
			NewFunction(Real(), Real(), Real()),
			"__function__real_real___real",
			"(real,real,) -> real",
		},
		{
			"zero arg function",
			NewFunction(Integer()),
			"__function____integer",
			"() -> integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.mangled, tt.ty.Mangled())
			assert.Equal(t, tt.desc, tt.ty.Describe())
		})
	}
}

// TestEqualityIsMangledEquality checks that type equality is reflexive,
// symmetric, transitive and equivalent to mangled-string equality.
func TestEqualityIsMangledEquality(t *testing.T) {
	all := []Type{
		Real(), Integer(), Boolean(),
		NewList(Real()), NewList(Real()), NewList(Integer()),
		NewFunction(Real(), Real()), NewFunction(Real(), Real()), NewFunction(Integer(), Real()),
	}
	for _, a := range all {
		assert.True(t, Equal(a, a), "reflexivity for %v", a.Describe())
		for _, b := range all {
			assert.Equal(t, a.Mangled() == b.Mangled(), Equal(a, b))
			assert.Equal(t, Equal(a, b), Equal(b, a), "symmetry for %v / %v", a.Describe(), b.Describe())
			for _, c := range all {
				if Equal(a, b) && Equal(b, c) {
					assert.True(t, Equal(a, c), "transitivity")
				}
			}
		}
	}
}

func TestCapabilities(t *testing.T) {
	assert.Nil(t, Real().ReturnType())
	assert.Nil(t, Real().SubscriptedType())
	assert.Nil(t, NewList(Real()).ReturnType())

	list := NewList(Integer())
	require.NotNil(t, list.SubscriptedType())
	assert.True(t, Equal(Integer(), list.SubscriptedType()))

	fn := NewFunction(Boolean(), Real(), Integer())
	require.NotNil(t, fn.ReturnType())
	assert.True(t, Equal(Boolean(), fn.ReturnType()))
	assert.Nil(t, fn.SubscriptedType())
}

func TestCallable(t *testing.T) {
	fn := NewFunction(Real(), Real(), Integer())

	ret, err := fn.Callable([]Type{Real(), Integer()})
	require.NoError(t, err)
	assert.True(t, Equal(Real(), ret))

	_, err = fn.Callable([]Type{Real()})
	assert.Error(t, err)

	_, err = fn.Callable([]Type{Integer(), Real()})
	assert.Error(t, err)
}

func desc(name string, args ...*ast.TypeDesc) *ast.TypeDesc {
	return &ast.TypeDesc{Name: name, TemplateArgs: args}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		desc    *ast.TypeDesc
		mangled string
	}{
		{"real", desc("real"), "real"},
		{"integer", desc("integer"), "integer"},
		{"boolean", desc("boolean"), "boolean"},
		{"list", desc("list", desc("integer")), "__list_integer"},
		{"fun", desc("fun", desc("real"), desc("real"), desc("real")), "__function__real_real___real"},
		{"fun no args", desc("fun", desc("boolean")), "__function____boolean"},
		{"fun of list", desc("fun", desc("list", desc("real"))), "__function____" + "__list_real"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ty, err := Build(tt.desc)
			require.NoError(t, err)
			assert.Equal(t, tt.mangled, ty.Mangled())
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		desc *ast.TypeDesc
	}{
		{"unknown type", desc("quux")},
		{"real with args", desc("real", desc("real"))},
		{"list without args", desc("list")},
		{"list with two args", desc("list", desc("real"), desc("real"))},
		{"fun without args", desc("fun")},
		{"nested unknown", desc("list", desc("quux"))},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.desc)
			assert.Error(t, err)
			if tt.desc != nil {
				var typeErr *TypeError
				assert.ErrorAs(t, err, &typeErr)
			}
		})
	}
}
