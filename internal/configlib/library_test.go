package configlib

import (
	"testing"

	"github.com/specialistvlad/vuldesign/internal/model"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObserver struct {
	renames    [][2]string
	referenced map[string][]string
}

func (f *fakeObserver) ExternalConfigRename(oldName, newName string) {
	f.renames = append(f.renames, [2]string{oldName, newName})
}

func (f *fakeObserver) ExternalConfigReferenced(name string) []string {
	return f.referenced[name]
}

func newLoaded(t *testing.T) *Library {
	t.Helper()
	lib := New()
	require.NoError(t, lib.Load([]model.ConfigItem{
		{Name: "A", Value: "B * 2", Group: "core"},
		{Name: "B", Value: "3", Group: "core"},
		{Name: "C", Value: "A + B"},
	}))
	return lib
}

func assertValue(t *testing.T, lib *Library, name string, expected int64) {
	t.Helper()
	v, err := lib.Value(name)
	require.NoError(t, err)
	assert.Equal(t, expected, v, name)
}

func TestLoadAndTopoOrder(t *testing.T) {
	lib := newLoaded(t)

	assertValue(t, lib, "A", 6)
	assertValue(t, lib, "B", 3)
	assertValue(t, lib, "C", 9)

	order, err := lib.TopoOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, order)

	refs, err := lib.ReverseReferences("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, refs)

	assert.Equal(t, []string{"", "core"}, lib.Groups())
	assert.Equal(t, []string{"A", "B"}, lib.ListGroup("core"))
}

func TestLoad_IsAtomic(t *testing.T) {
	testCases := []struct {
		name  string
		items []model.ConfigItem
		code  vulerr.Code
	}{
		{name: "invalid name", items: []model.ConfigItem{{Name: "X", Value: "1"}, {Name: "9x", Value: "1"}}, code: vulerr.ConfigInvalidName},
		{name: "duplicate in batch", items: []model.ConfigItem{{Name: "X", Value: "1"}, {Name: "X", Value: "2"}}, code: vulerr.ConfigExists},
		{name: "duplicate of existing", items: []model.ConfigItem{{Name: "A", Value: "1"}}, code: vulerr.ConfigExists},
		{name: "bad expression", items: []model.ConfigItem{{Name: "X", Value: "1 +"}}, code: vulerr.ConfigExprInvalid},
		{name: "undefined reference", items: []model.ConfigItem{{Name: "X", Value: "NOPE"}}, code: vulerr.ConfigUndefined},
		{name: "cycle in batch", items: []model.ConfigItem{{Name: "X", Value: "Y"}, {Name: "Y", Value: "X"}}, code: vulerr.ConfigCircular},
		{name: "self reference", items: []model.ConfigItem{{Name: "X", Value: "X + 1"}}, code: vulerr.ConfigCircular},
		{name: "evaluation failure", items: []model.ConfigItem{{Name: "X", Value: "A / (B - 3)"}}, code: vulerr.ConfigEvalFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lib := newLoaded(t)
			err := lib.Load(tc.items)
			require.Error(t, err)
			assert.True(t, vulerr.Is(err, tc.code), err.Error())
			assert.Equal(t, []string{"A", "B", "C"}, lib.Names())
			refs, err := lib.ReverseReferences("A")
			require.NoError(t, err)
			assert.Equal(t, []string{"C"}, refs)
		})
	}
}

func TestCycleMessageListsParticipants(t *testing.T) {
	lib := New()
	err := lib.Load([]model.ConfigItem{
		{Name: "P", Value: "Q"},
		{Name: "Q", Value: "R"},
		{Name: "R", Value: "P"},
		{Name: "S", Value: "1"},
	})
	require.Error(t, err)
	assert.Equal(t, "#30007: Config items have circular references: P, Q, R", err.Error())
}

func TestGet_Suggests(t *testing.T) {
	lib := New()
	require.NoError(t, lib.Add(model.ConfigItem{Name: "WIDTH", Value: "32"}))

	_, err := lib.Get("WIDHT")
	require.Error(t, err)
	assert.True(t, vulerr.Is(err, vulerr.ConfigNotFound))
	assert.Contains(t, err.Error(), `did you mean "WIDTH"`)

	item, err := lib.Get("WIDTH")
	require.NoError(t, err)
	assert.Equal(t, "32", item.Value)
}

func TestEvaluate(t *testing.T) {
	lib := newLoaded(t)

	t.Run("overrides shadow library items", func(t *testing.T) {
		visited := map[string]struct{}{}
		v, err := lib.Evaluate("A + N", map[string]int64{"N": 1}, visited)
		require.NoError(t, err)
		assert.Equal(t, int64(7), v)
		assert.Equal(t, map[string]struct{}{"A": {}, "N": {}}, visited)

		v, err = lib.Evaluate("A", map[string]int64{"A": 100}, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(100), v)
	})

	t.Run("negative values substitute cleanly", func(t *testing.T) {
		v, err := lib.Evaluate("3 - N * 2", map[string]int64{"N": -4}, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(11), v)
	})

	t.Run("failures carry codes", func(t *testing.T) {
		_, err := lib.Evaluate("Q + 1", nil, nil)
		assert.True(t, vulerr.Is(err, vulerr.ConfigUndefined), err)

		_, err = lib.Evaluate("1 / (B - 3)", nil, nil)
		assert.True(t, vulerr.Is(err, vulerr.ConfigEvalFailed), err)

		_, err = lib.Evaluate("(1", nil, nil)
		assert.True(t, vulerr.Is(err, vulerr.ConfigExprInvalid), err)

		_, err = lib.Evaluate("1 $ 2", nil, nil)
		assert.True(t, vulerr.Is(err, vulerr.ConfigExprInvalid), err)
	})
}

func TestUpdateValue(t *testing.T) {
	t.Run("dependents are re-evaluated", func(t *testing.T) {
		lib := newLoaded(t)
		require.NoError(t, lib.UpdateValue("B", "4"))
		assertValue(t, lib, "A", 8)
		assertValue(t, lib, "C", 12)
	})

	t.Run("new references are tracked", func(t *testing.T) {
		lib := newLoaded(t)
		require.NoError(t, lib.Add(model.ConfigItem{Name: "D", Value: "10"}))
		require.NoError(t, lib.UpdateValue("A", "D"))
		assertValue(t, lib, "C", 13)

		refs, err := lib.ReverseReferences("B")
		require.NoError(t, err)
		assert.Equal(t, []string{"C"}, refs)
	})

	t.Run("cycle is rejected without effect", func(t *testing.T) {
		lib := newLoaded(t)
		err := lib.UpdateValue("B", "C")
		assert.True(t, vulerr.Is(err, vulerr.ConfigCircular), err)

		item, err := lib.Get("B")
		require.NoError(t, err)
		assert.Equal(t, "3", item.Value)
		assertValue(t, lib, "A", 6)
		refs, err := lib.References("B")
		require.NoError(t, err)
		assert.Empty(t, refs)
	})

	t.Run("evaluation failure in a dependent is rejected", func(t *testing.T) {
		lib := newLoaded(t)
		require.NoError(t, lib.Add(model.ConfigItem{Name: "D", Value: "12 / (B - 2)"}))
		err := lib.UpdateValue("B", "2")
		assert.True(t, vulerr.Is(err, vulerr.ConfigEvalFailed), err)
		assertValue(t, lib, "B", 3)
		assertValue(t, lib, "D", 12)
	})
}

func TestCommentAndGroup(t *testing.T) {
	lib := newLoaded(t)
	require.NoError(t, lib.UpdateComment("A", "twice B"))
	require.NoError(t, lib.SetGroup("C", "derived"))

	item, err := lib.Get("A")
	require.NoError(t, err)
	assert.Equal(t, "twice B", item.Comment)
	assert.Equal(t, []string{"C"}, lib.ListGroup("derived"))

	assert.Error(t, lib.UpdateComment("Z", ""))
	assert.Error(t, lib.SetGroup("Z", ""))
}

func TestRename(t *testing.T) {
	lib := New()
	obs := &fakeObserver{}
	lib.Observe(obs)
	require.NoError(t, lib.Load([]model.ConfigItem{
		{Name: "ratio", Value: "2"},
		{Name: "ratio2", Value: "3"},
		{Name: "X", Value: "ratio*ratio2 + ratio"},
		{Name: "Y", Value: "X"},
	}))

	require.NoError(t, lib.Rename("ratio", "scale"))

	item, err := lib.Get("X")
	require.NoError(t, err)
	assert.Equal(t, "scale*ratio2 + scale", item.Value)

	refs, err := lib.References("X")
	require.NoError(t, err)
	assert.Equal(t, []string{"ratio2", "scale"}, refs)

	users, err := lib.ReverseReferences("scale")
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, users)

	assert.False(t, lib.Has("ratio"))
	assertValue(t, lib, "Y", 8)
	assert.Equal(t, [][2]string{{"ratio", "scale"}}, obs.renames)

	require.NoError(t, lib.Rename("X", "Z"))
	item, err = lib.Get("Y")
	require.NoError(t, err)
	assert.Equal(t, "Z", item.Value)

	t.Run("errors", func(t *testing.T) {
		assert.True(t, vulerr.Is(lib.Rename("nope", "a"), vulerr.ConfigNotFound))
		assert.True(t, vulerr.Is(lib.Rename("Z", "ratio2"), vulerr.ConfigExists))
		assert.True(t, vulerr.Is(lib.Rename("Z", "1bad"), vulerr.ConfigInvalidName))
		assert.Len(t, obs.renames, 2)
	})
}

func TestRemove(t *testing.T) {
	lib := newLoaded(t)
	obs := &fakeObserver{referenced: map[string][]string{"C": {"bundle pkt"}}}
	lib.Observe(obs)

	err := lib.Remove("B")
	assert.True(t, vulerr.Is(err, vulerr.ConfigStillReferenced), err)
	assert.Contains(t, err.Error(), "A, C")

	err = lib.Remove("C")
	assert.True(t, vulerr.Is(err, vulerr.ConfigStillReferenced), err)
	assert.Contains(t, err.Error(), "bundle pkt")

	obs.referenced = nil
	require.NoError(t, lib.Remove("C"))
	require.NoError(t, lib.Remove("A"))
	require.NoError(t, lib.Remove("B"))
	assert.Empty(t, lib.Names())
}
