package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igfraga/go-conflake/internal/ir"
	"github.com/igfraga/go-conflake/internal/types"
)

func TestLookupResults(t *testing.T) {
	real := types.Real()
	integer := types.Integer()
	boolean := types.Boolean()

	tests := []struct {
		op     string
		args   []types.Type
		result types.Type
	}{
		{"+", []types.Type{real, real}, real},
		{"-", []types.Type{real, real}, real},
		{"*", []types.Type{real, real}, real},
		{"+", []types.Type{integer, integer}, integer},
		{"-", []types.Type{integer, integer}, integer},
		{"*", []types.Type{integer, integer}, integer},
		{"<", []types.Type{real, real}, boolean},
		{">", []types.Type{real, real}, boolean},
		{"<", []types.Type{integer, integer}, boolean},
		{">", []types.Type{integer, integer}, boolean},
		{"and", []types.Type{boolean, boolean}, boolean},
		{"or", []types.Type{boolean, boolean}, boolean},
		{"if", []types.Type{boolean, real, real}, real},
		{"if", []types.Type{boolean, integer, integer}, integer},
	}

	for _, tt := range tests {
		t.Run(tt.op+"_"+types.MangleTuple(tt.args), func(t *testing.T) {
			info, err := Get(tt.op, tt.args)
			require.NoError(t, err)
			assert.True(t, types.Equal(tt.result, info.Result))
		})
	}
}

// TestNoImplicitConversions checks that lookup is by exact type equality.
func TestNoImplicitConversions(t *testing.T) {
	real := types.Real()
	integer := types.Integer()
	boolean := types.Boolean()

	misses := [][]any{
		{"+", []types.Type{integer, real}},
		{"+", []types.Type{real, integer}},
		{"+", []types.Type{boolean, boolean}},
		{"<", []types.Type{boolean, boolean}},
		{"and", []types.Type{integer, integer}},
		{"if", []types.Type{boolean, boolean, boolean}},
		{"if", []types.Type{boolean, real, integer}},
		{"if", []types.Type{real, real, real}},
		{"%", []types.Type{real, real}},
	}

	for _, miss := range misses {
		op := miss[0].(string)
		args := miss[1].([]types.Type)
		_, err := Get(op, args)
		assert.Error(t, err, "op %v must not match %v", op, types.MangleTuple(args))
	}
}

// TestBuilderShapes checks which entries are eager and which are lazy; the
// dispatcher prefers lazy when present, and if is the only lazy builtin.
func TestBuilderShapes(t *testing.T) {
	real := types.Real()
	boolean := types.Boolean()

	plus, err := Get("+", []types.Type{real, real})
	require.NoError(t, err)
	assert.NotNil(t, plus.Build)
	assert.Nil(t, plus.Lazy)

	cond, err := Get("if", []types.Type{boolean, real, real})
	require.NoError(t, err)
	assert.Nil(t, cond.Build)
	assert.NotNil(t, cond.Lazy)
}

// TestEagerEmission checks that eager builders emit the expected opcode.
func TestEagerEmission(t *testing.T) {
	tests := []struct {
		op     string
		args   []types.Type
		lhs    ir.Value
		rhs    ir.Value
		opcode ir.Opcode
	}{
		{"+", []types.Type{types.Real(), types.Real()}, &ir.ConstFloat{V: 1}, &ir.ConstFloat{V: 2}, ir.OpFAdd},
		{"*", []types.Type{types.Integer(), types.Integer()}, &ir.ConstInt{Ty: ir.Int64Type(), V: 1}, &ir.ConstInt{Ty: ir.Int64Type(), V: 2}, ir.OpMul},
		{"<", []types.Type{types.Integer(), types.Integer()}, &ir.ConstInt{Ty: ir.Int64Type(), V: 1}, &ir.ConstInt{Ty: ir.Int64Type(), V: 2}, ir.OpICmpSLT},
		{"and", []types.Type{types.Boolean(), types.Boolean()}, ir.True(), ir.False(), ir.OpAnd},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			module := ir.NewModule("test")
			fn := module.NewFunc("f", ir.NewFuncType(ir.DoubleType()))
			builder := ir.NewBuilder(module)
			builder.SetInsertPoint(fn.NewBlock("entry"))

			info, err := Get(tt.op, tt.args)
			require.NoError(t, err)
			v := info.Build(builder, []ir.Value{tt.lhs, tt.rhs})
			instr, ok := v.(*ir.Instr)
			require.True(t, ok)
			assert.Equal(t, tt.opcode, instr.Op)
		})
	}
}

// TestIfLowering checks the lazy if builder: cond-br, two arm blocks, and a
// phi merge whose incomings are the arm values.
func TestIfLowering(t *testing.T) {
	module := ir.NewModule("test")
	fn := module.NewFunc("f", ir.NewFuncType(ir.DoubleType()))
	builder := ir.NewBuilder(module)
	entry := fn.NewBlock("entry")
	builder.SetInsertPoint(entry)

	info, err := Get("if", []types.Type{types.Boolean(), types.Real(), types.Real()})
	require.NoError(t, err)

	produced := []string{}
	producer := func(tag string, v ir.Value) ValueProducer {
		return func() (ir.Value, error) {
			produced = append(produced, tag)
			return v, nil
		}
	}

	v, err := info.Lazy(builder, []ValueProducer{
		producer("cond", ir.True()),
		producer("then", &ir.ConstFloat{V: 1}),
		producer("else", &ir.ConstFloat{V: 2}),
	})
	require.NoError(t, err)

	// All three operands are produced, condition first.
	assert.Equal(t, []string{"cond", "then", "else"}, produced)

	phi, ok := v.(*ir.Instr)
	require.True(t, ok)
	assert.Equal(t, ir.OpPhi, phi.Op)
	require.Len(t, phi.Incomings, 2)

	term := entry.Terminator()
	require.NotNil(t, term)
	assert.Equal(t, ir.OpCondBr, term.Op)
	assert.Len(t, fn.Blocks, 4) // entry, then, else, ifcont
}
