package ir_test

import (
	"testing"

	"github.com/cottand/qtc/frontend/ir"
	"github.com/stretchr/testify/assert"
)

var allFunctorValues = []ir.FunctorSetValue{ir.FunctorsEmpty, ir.FunctorsAdj, ir.FunctorsCtl, ir.FunctorsCtlAdj}

func TestSupersetLattice(t *testing.T) {
	for _, v := range allFunctorValues {
		t.Run(v.String(), func(t *testing.T) {
			assert.True(t, ir.Superset(ir.FunctorsEmpty, v), "every set supports the empty set")
			assert.True(t, ir.Superset(v, ir.FunctorsCtlAdj), "Adj + Ctl supports every set")
			assert.True(t, ir.Superset(v, v))
		})
	}
	assert.False(t, ir.Superset(ir.FunctorsCtl, ir.FunctorsAdj))
	assert.False(t, ir.Superset(ir.FunctorsAdj, ir.FunctorsCtl))
	assert.False(t, ir.Superset(ir.FunctorsCtlAdj, ir.FunctorsAdj))
	assert.False(t, ir.Superset(ir.FunctorsAdj, ir.FunctorsEmpty))
}

func TestFunctorUnion(t *testing.T) {
	tests := []struct {
		a, b, union ir.FunctorSetValue
	}{
		{ir.FunctorsEmpty, ir.FunctorsAdj, ir.FunctorsAdj},
		{ir.FunctorsAdj, ir.FunctorsCtl, ir.FunctorsCtlAdj},
		{ir.FunctorsCtl, ir.FunctorsCtlAdj, ir.FunctorsCtlAdj},
		{ir.FunctorsAdj, ir.FunctorsAdj, ir.FunctorsAdj},
	}
	for _, test := range tests {
		t.Run(test.a.String()+" and "+test.b.String(), func(t *testing.T) {
			assert.Equal(t, test.union, test.a.Union(test.b))
			assert.Equal(t, test.union, test.b.Union(test.a))
			// the join is the least upper bound
			assert.True(t, test.a.Union(test.b).Satisfies(test.a))
			assert.True(t, test.a.Union(test.b).Satisfies(test.b))
		})
	}
}

func TestFunctorContains(t *testing.T) {
	assert.True(t, ir.FunctorsCtlAdj.Contains(ir.FunctorAdj))
	assert.True(t, ir.FunctorsCtlAdj.Contains(ir.FunctorCtl))
	assert.True(t, ir.FunctorsAdj.Contains(ir.FunctorAdj))
	assert.False(t, ir.FunctorsAdj.Contains(ir.FunctorCtl))
	assert.False(t, ir.FunctorsEmpty.Contains(ir.FunctorAdj))
}

func TestFunctorSetStates(t *testing.T) {
	value := ir.FunctorValue(ir.FunctorsAdj)
	v, ok := value.Value()
	assert.True(t, ok)
	assert.Equal(t, ir.FunctorsAdj, v)
	assert.False(t, value.IsInfer())

	infer := ir.FunctorInfer(3)
	_, ok = infer.Value()
	assert.False(t, ok)
	id, ok := infer.Infer()
	assert.True(t, ok)
	assert.Equal(t, ir.InferFunctorId(3), id)
	assert.Equal(t, "f?3", infer.String())

	param := ir.FunctorSetParam(1, ir.FunctorsCtl)
	v, ok = param.Value()
	assert.True(t, ok)
	assert.Equal(t, ir.FunctorsCtl, v)
	p, ok := param.Param()
	assert.True(t, ok)
	assert.Equal(t, ir.ParamId(1), p)

	assert.Equal(t, ir.FunctorValue(ir.FunctorsCtl), ir.FunctorValue(ir.FunctorsCtl))
	assert.NotEqual(t, ir.FunctorValue(ir.FunctorsCtl), param)
}
