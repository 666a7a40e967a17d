package evolution

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"evolog/internal/commits"
	"evolog/internal/ops"
	"evolog/internal/plane"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireCursorValid checks the cursor names a commit in the log
func requireCursorValid(t *testing.T, e *EvolutionLog) {
	t.Helper()
	_, ok := e.Find(e.Cursor())
	require.True(t, ok, "cursor %s is not a commit in the log", e.Cursor())
}

func TestScenario(t *testing.T) {
	e := New()
	root := e.Root()
	require.Equal(t, 1, e.Len())
	require.Equal(t, root.ID, e.Cursor())
	requireCursorValid(t, e)

	planeOp := ops.NewPlane{Name: "XY", Plane: plane.XY()}
	second := e.Append(planeOp)
	assert.Equal(t, 2, e.Len())
	assert.Equal(t, second, e.Cursor())
	assert.Equal(t, root.ID, e.Last().Parent)

	require.NoError(t, e.Checkout(root.ID))
	assert.Equal(t, root.ID, e.Cursor())
	assert.Equal(t, 2, e.Len())

	third, err := e.CherryPick(second)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Len())
	assert.Equal(t, third, e.Cursor())

	cs := e.Commits()
	assert.Equal(t, cs[1].Operation, cs[2].Operation)
	assert.Equal(t, root.ID, cs[2].Parent)
	// same op on the same parent gives the same id
	assert.Equal(t, cs[1].ID, cs[2].ID)
	assert.Equal(t, cs[1].Operation, e.Head().Operation)
	assert.Equal(t, third, e.Cursor())
	assert.NoError(t, e.Verify())
}

func TestRootNonce(t *testing.T) {
	t.Run("Fresh Logs Differ", func(t *testing.T) {
		a, b := New(), New()
		assert.NotEqual(t, a.Root().ID, b.Root().ID)
	})

	t.Run("Fixed Nonce", func(t *testing.T) {
		e := NewWithOptions(Options{Nonce: "Hello World"})
		assert.Equal(t, "6cf9ecb881ec9bf672c2ca123633fa8b6fd1adb7fc6b73f5a1913ce89939887a", e.Cursor())
		assert.Equal(t, ops.Create{Nonce: "Hello World"}, e.Head().Operation)
	})
}

func TestAppend(t *testing.T) {
	e := New()
	steps := []ops.Operation{
		ops.NewPlane{Name: "XY", Plane: plane.XY()},
		ops.NewSketch{Name: "Sketch1", PlaneName: "XY", UniqueID: "sk-1"},
		ops.NewRectangle{SketchID: "sk-1", X: 1, Y: 1, Width: 4, Height: 2},
		ops.NewExtrusion{Name: "Ext1", UniqueID: "ex-1", SketchID: "sk-1", ClickX: 2, ClickY: 2, Depth: 3},
		ops.ModifyExtrusionDepth{UniqueID: "ex-1", Depth: 6},
	}
	for _, op := range steps {
		before, n := e.Cursor(), e.Len()
		got := e.Append(op)

		assert.Equal(t, n+1, e.Len())
		assert.Equal(t, got, e.Cursor())
		tail := e.Last()
		assert.Equal(t, before, tail.Parent)
		assert.Equal(t, got, tail.ID)
		assert.Equal(t, ops.Hash(op), tail.ContentHash)
		assert.Equal(t, commits.IDFor(tail.ContentHash, tail.Parent), tail.ID)
		assert.Equal(t, tail, e.Head())
	}
	assert.NoError(t, e.Verify())
}

func TestAppendPointerVariant(t *testing.T) {
	byValue := NewWithOptions(Options{Nonce: "Hello World"})
	byPointer := NewWithOptions(Options{Nonce: "Hello World"})

	want := byValue.Append(ops.NewPlane{Name: "XY", Plane: plane.XY()})
	got := byPointer.Append(&ops.NewPlane{Name: "XY", Plane: plane.XY()})
	assert.Equal(t, want, got)
	assert.Equal(t, "78136466cb57cb997bf47ee0a3d88600403a3c5765ec34545ac4faeb9c741b55", got)

	head := byPointer.Head()
	assert.Equal(t, ops.NewPlane{Name: "XY", Plane: plane.XY()}, head.Operation)
	assert.Equal(t, "78136466cb: NewPlane: 'XY'", head.PrettyPrint())
	assert.NoError(t, byPointer.Verify())

	picked, err := byPointer.CherryPick(got)
	require.NoError(t, err)
	c, _ := byPointer.Find(picked)
	assert.IsType(t, ops.NewPlane{}, c.Operation)
}

func TestCheckout(t *testing.T) {
	e := New()
	first := e.Append(ops.NewPlane{Name: "XY", Plane: plane.XY()})
	e.Append(ops.NewPlane{Name: "YZ", Plane: plane.YZ()})

	t.Run("Existing", func(t *testing.T) {
		require.NoError(t, e.Checkout(first))
		assert.Equal(t, first, e.Cursor())
		assert.Equal(t, 3, e.Len())
	})

	t.Run("Missing", func(t *testing.T) {
		before := e.Cursor()
		err := e.Checkout(strings.Repeat("ab", 32))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))

		var nf *NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, strings.Repeat("ab", 32), nf.Sha)
		assert.Equal(t, "SHA "+strings.Repeat("ab", 32)+" not found in oplog", err.Error())

		assert.Equal(t, before, e.Cursor())
		assert.Equal(t, 3, e.Len())
		requireCursorValid(t, e)
	})

	t.Run("Branch From Ancestor", func(t *testing.T) {
		require.NoError(t, e.Checkout(first))
		next := e.Append(ops.NewSketch{Name: "S", PlaneName: "XY", UniqueID: "s"})
		assert.Equal(t, 4, e.Len())
		assert.Equal(t, first, e.Last().Parent)
		assert.Equal(t, next, e.Cursor())
	})
}

func TestCherryPick(t *testing.T) {
	t.Run("Twice", func(t *testing.T) {
		e := New()
		src := e.Append(ops.NewCircle{SketchID: "sk-1", Radius: 5})
		a, err := e.CherryPick(src)
		require.NoError(t, err)
		b, err := e.CherryPick(src)
		require.NoError(t, err)

		ca, _ := e.Find(a)
		cb, _ := e.Find(b)
		assert.Equal(t, ca.Operation, cb.Operation)
		assert.NotEqual(t, ca.ID, cb.ID)
		assert.NotEqual(t, ca.Parent, cb.Parent)
		assert.Equal(t, src, ca.Parent)
		assert.Equal(t, a, cb.Parent)
		assert.Equal(t, 4, e.Len())
	})

	t.Run("Missing", func(t *testing.T) {
		e := New()
		e.Append(ops.NewCircle{SketchID: "sk-1", Radius: 5})
		before, n := e.Cursor(), e.Len()
		_, err := e.CherryPick("feedface")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, before, e.Cursor())
		assert.Equal(t, n, e.Len())
	})

	t.Run("Root", func(t *testing.T) {
		e := New()
		_, err := e.CherryPick(e.Root().ID)
		require.NoError(t, err)
		assert.Equal(t, e.Root().Operation, e.Head().Operation)
		assert.Equal(t, e.Root().ID, e.Head().Parent)
	})
}

func TestResolve(t *testing.T) {
	e := NewWithOptions(Options{Nonce: "Hello World"})
	id := e.Append(ops.NewPlane{Name: "XY", Plane: plane.XY()})

	got, err := e.Resolve(id[:8])
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = e.Resolve(strings.ToUpper(id))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = e.Resolve("78")
	assert.ErrorIs(t, err, ErrPrefixTooShort)

	_, err = e.Resolve("zzzzzz")
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("Ambiguous", func(t *testing.T) {
		e := NewWithOptions(Options{Nonce: "Hello World"})
		// the 14th and 112th commits of this chain share the prefix 8a61
		for i := 0; i < 112; i++ {
			e.Append(ops.ModifyExtrusionDepth{UniqueID: "e", Depth: float64(i)})
		}
		_, err := e.Resolve("8a61")
		assert.ErrorIs(t, err, ErrAmbiguous)

		got, err := e.Resolve(e.Cursor()[:12])
		require.NoError(t, err)
		assert.Equal(t, e.Cursor(), got)
	})
}

func TestAncestry(t *testing.T) {
	e := New()
	a := e.Append(ops.NewPlane{Name: "XY", Plane: plane.XY()})
	b := e.Append(ops.NewSketch{Name: "S", PlaneName: "XY", UniqueID: "s"})
	require.NoError(t, e.Checkout(a))
	c := e.Append(ops.NewSketch{Name: "T", PlaneName: "XY", UniqueID: "t"})

	var ids []ops.Sha
	for _, cm := range e.Ancestry() {
		ids = append(ids, cm.ID)
	}
	assert.Equal(t, []ops.Sha{e.Root().ID, a, c}, ids)
	assert.NotContains(t, ids, b)
}

func TestPrettyPrint(t *testing.T) {
	e := NewWithOptions(Options{Nonce: "Hello World"})
	e.Append(ops.NewPlane{Name: "XY", Plane: plane.XY()})
	want := "6cf9ecb881: Create: Hello World\n78136466cb: NewPlane: 'XY'"
	assert.Equal(t, want, e.PrettyPrint())

	var sb strings.Builder
	require.NoError(t, e.Fprint(&sb))
	assert.Equal(t, want+"\n", sb.String())
}

func TestJSON(t *testing.T) {
	e := New()
	first := e.Append(ops.NewPlane{Name: "XY", Plane: plane.XY()})
	e.Append(ops.NewCircle{SketchID: "s", Radius: 1})
	require.NoError(t, e.Checkout(first))

	data, err := json.Marshal(e)
	require.NoError(t, err)

	back, err := Decode(data, nil)
	require.NoError(t, err)
	assert.Equal(t, e.Cursor(), back.Cursor())
	assert.Equal(t, e.Commits(), back.Commits())

	t.Run("Unknown Cursor", func(t *testing.T) {
		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &raw))
		raw["cursor"] = json.RawMessage(`"abcdef"`)
		bad, _ := json.Marshal(raw)
		_, err := Decode(bad, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Broken Chain", func(t *testing.T) {
		tampered := strings.Replace(string(data), `"radius":1`, `"radius":2`, 1)
		_, err := Decode([]byte(tampered), nil)
		assert.ErrorIs(t, err, commits.ErrContentHashMismatch)
	})

	t.Run("Missing Oplog", func(t *testing.T) {
		_, err := Decode([]byte(`{"cursor":"x","oplog":null}`), nil)
		assert.Error(t, err)
	})
}

func TestLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	e := NewWithOptions(Options{Logger: logrus.NewEntry(logger)})

	e.Append(ops.Describe{Description: "note", Commit: e.Cursor()})
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "appended commit", entry.Message)
	assert.Equal(t, "Describe", entry.Data["kind"])

	_ = e.Checkout("missing")
	entry = hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
}

func TestShared(t *testing.T) {
	s := NewShared(New())
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				id := s.Append(ops.ModifyExtrusionDepth{UniqueID: "e", Depth: float64(w*100 + i)})
				_ = s.Cursor()
				if i%5 == 0 {
					if err := s.Checkout(id); err != nil {
						t.Error(err)
					}
					if _, err := s.CherryPick(id); err != nil {
						t.Error(err)
					}
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 1+8*25+8*5, s.Len())
	s.View(func(e *EvolutionLog) {
		assert.NoError(t, e.Verify())
		assert.Equal(t, e.Cursor(), e.Head().ID)
	})
}
