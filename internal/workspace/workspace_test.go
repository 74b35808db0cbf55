package workspace_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/opcheck/internal/operator"
	"github.com/born-ml/opcheck/internal/parallel"
	"github.com/born-ml/opcheck/internal/tensor"
	"github.com/born-ml/opcheck/internal/workspace"
)

func feed(t *testing.T, ws *workspace.Workspace, name string, data []float32, shape ...int) {
	t.Helper()
	ws.FeedBlob(name, tensor.MustFromSlice(data, tensor.Shape(shape), tensor.CPU))
}

func fetch(t *testing.T, ws *workspace.Workspace, name string) []float32 {
	t.Helper()
	blob, err := ws.FetchBlob(name)
	require.NoError(t, err)
	return blob.AsFloat32()
}

func TestFeedBlob_Copies(t *testing.T) {
	ws := workspace.New()
	src := tensor.MustFromSlice([]float32{1, 2, 3}, tensor.Shape{3}, tensor.CPU)
	ws.FeedBlob("X", src)
	src.AsFloat32()[0] = 100

	assert.Equal(t, []float32{1, 2, 3}, fetch(t, ws, "X"))
	assert.True(t, ws.HasBlob("X"))
	assert.False(t, ws.HasBlob("Y"))
}

func TestFetchBlob_Missing(t *testing.T) {
	ws := workspace.New()
	_, err := ws.FetchBlob("nope")
	require.ErrorIs(t, err, workspace.ErrBlobNotFound)
}

func TestBlobsAndReset(t *testing.T) {
	ws := workspace.New()
	feed(t, ws, "b", []float32{1}, 1)
	feed(t, ws, "a", []float32{1}, 1)
	assert.Equal(t, []string{"a", "b"}, ws.Blobs())

	ws.Reset()
	assert.Empty(t, ws.Blobs())
}

func TestRunOperatorOnce_Add(t *testing.T) {
	ws := workspace.New()
	feed(t, ws, "A", []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	feed(t, ws, "B", []float32{10, 20, 30}, 3)

	def := operator.MustCreate("Add", []string{"A", "B"}, []string{"C"})
	require.NoError(t, ws.RunOperatorOnce(def, tensor.CPU))

	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, fetch(t, ws, "C"))
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, fetch(t, ws, "A"), "input untouched")
	assert.Equal(t, []float32{10, 20, 30}, fetch(t, ws, "B"), "input untouched")
}

func TestRunOperatorOnce_Inplace(t *testing.T) {
	ws := workspace.New()
	feed(t, ws, "X", []float32{1, 4, 9}, 3)

	def := operator.MustCreate("Sqrt", []string{"X"}, []string{"X"})
	require.NoError(t, ws.RunOperatorOnce(def, tensor.CPU))
	assert.Equal(t, []float32{1, 2, 3}, fetch(t, ws, "X"))
}

func TestRunOperatorOnce_FetchedBlobNotOverwritten(t *testing.T) {
	ws := workspace.New()
	feed(t, ws, "X", []float32{1, 4, 9}, 3)
	before, err := ws.FetchBlob("X")
	require.NoError(t, err)

	def := operator.MustCreate("Sqrt", []string{"X"}, []string{"X"})
	require.NoError(t, ws.RunOperatorOnce(def, tensor.CPU))

	assert.Equal(t, []float32{1, 4, 9}, before.AsFloat32())
	assert.Equal(t, []float32{1, 2, 3}, fetch(t, ws, "X"))
}

func TestRunOperatorOnce_SharedInputName(t *testing.T) {
	ws := workspace.New()
	feed(t, ws, "X", []float32{1, 2, 3}, 3)

	def := operator.MustCreate("Mul", []string{"X", "X"}, []string{"X"})
	require.NoError(t, ws.RunOperatorOnce(def, tensor.CPU))
	assert.Equal(t, []float32{1, 4, 9}, fetch(t, ws, "X"))
}

func TestRunOperatorOnce_Errors(t *testing.T) {
	tests := []struct {
		name   string
		def    *operator.OperatorDef
		device tensor.Device
		target error
	}{
		{
			name:   "missing input",
			def:    operator.MustCreate("Log", []string{"Missing"}, []string{"Y"}),
			device: tensor.CPU,
			target: workspace.ErrBlobNotFound,
		},
		{
			name:   "domain error",
			def:    operator.MustCreate("Log", []string{"Neg"}, []string{"Y"}),
			device: tensor.CPU,
		},
		{
			name:   "unknown device",
			def:    operator.MustCreate("Log", []string{"X"}, []string{"Y"}),
			device: tensor.Device(42),
		},
		{
			name:   "legacy misalignment",
			def:    operator.MustCreate("Add", []string{"X", "Row"}, []string{"Y"}, operator.Arg("broadcast", 1)),
			device: tensor.CPU,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := workspace.New()
			feed(t, ws, "X", []float32{1, 2, 3, 4, 5, 6}, 2, 3)
			feed(t, ws, "Row", []float32{1, 2}, 2)
			feed(t, ws, "Neg", []float32{1, -1}, 2)

			err := ws.RunOperatorOnce(tt.def, tt.device)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			assert.False(t, ws.HasBlob("Y"))
		})
	}
}

func TestRunOperatorOnce_GradientOutputsOwnBuffers(t *testing.T) {
	ws := workspace.New()
	feed(t, ws, "dC", []float32{1, 2, 3}, 3)
	feed(t, ws, "A", []float32{0, 0, 0}, 3)
	feed(t, ws, "B", []float32{0, 0, 0}, 3)

	def := operator.MustCreate("AddGradient", []string{"dC", "A", "B"}, []string{"dA", "dB"})
	require.NoError(t, ws.RunOperatorOnce(def, tensor.CPU))

	dA, err := ws.FetchBlob("dA")
	require.NoError(t, err)
	dB, err := ws.FetchBlob("dB")
	require.NoError(t, err)
	dC, err := ws.FetchBlob("dC")
	require.NoError(t, err)

	assert.Equal(t, []float32{1, 2, 3}, dA.AsFloat32())
	assert.Equal(t, []float32{1, 2, 3}, dB.AsFloat32())
	assert.False(t, dA.SameBuffer(dB))
	assert.False(t, dA.SameBuffer(dC))
	assert.False(t, dB.SameBuffer(dC))
}

func TestRunNetOnce(t *testing.T) {
	for _, device := range []tensor.Device{tensor.CPU, tensor.ParallelCPU} {
		t.Run(device.String(), func(t *testing.T) {
			ws := workspace.New(workspace.WithParallelConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}))
			feed(t, ws, "X", []float32{1, 2, 4}, 3)

			net := operator.NewNet("chain")
			logged, err := net.Add("Log", []string{"X"}, 1)
			require.NoError(t, err)
			out, err := net.Add("Exp", logged, 1)
			require.NoError(t, err)

			require.NoError(t, ws.RunNetOnce(net, device))
			got := fetch(t, ws, out[0])
			for i, want := range []float32{1, 2, 4} {
				assert.InDelta(t, want, got[i], 1e-5)
			}
			assert.InDelta(t, math.Log(2), float64(fetch(t, ws, logged[0])[1]), 1e-6)
		})
	}
}

func TestRunNetOnce_ErrorNamesOperator(t *testing.T) {
	ws := workspace.New()
	net := operator.NewNet("broken")
	_, err := net.Add("Log", []string{"X"}, 1)
	require.NoError(t, err)

	err = ws.RunNetOnce(net, tensor.CPU)
	require.ErrorIs(t, err, workspace.ErrBlobNotFound)
	assert.Contains(t, err.Error(), `net "broken"`)
	assert.Contains(t, err.Error(), "op 0")
}
