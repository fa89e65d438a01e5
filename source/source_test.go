package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/treeport/pkg/errors"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		path   string
		format string
	}{
		{path: "testdata/model.dump", format: FormatText},
		{path: "testdata/single.txt", format: FormatText},
		{path: "testdata/bundle.jsonc", format: FormatBundle},
		{path: "testdata/notrees.json", format: FormatBundle},
		{path: "testdata/noext", format: FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			loader, err := Resolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.format, loader.Format())
		})
	}
}

func TestResolveUnsupported(t *testing.T) {
	for _, path := range []string{"model.bin", "xgb.model", "booster.ubj", "clf.pkl", "clf.pickle", "testdata/unknown.dat"} {
		t.Run(path, func(t *testing.T) {
			_, err := Resolve(path)
			require.Error(t, err)
			assert.True(t, errors.IsUnsupportedSourceFormat(err), "got %v", err)
		})
	}
}

func TestResolveMissingFile(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.False(t, errors.IsUnsupportedSourceFormat(err))
}

func TestSniff(t *testing.T) {
	tests := []struct {
		head string
		want Loader
	}{
		{head: "{\"trees\": []}", want: BundleLoader{}},
		{head: "\ufeff  // comment\n{}", want: BundleLoader{}},
		{head: "booster[0]:\n0:leaf=1", want: TextLoader{}},
		{head: "\n12:leaf=1", want: TextLoader{}},
		{head: "12", want: nil},
		{head: "leaf=1", want: nil},
		{head: "", want: nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sniff([]byte(tt.head)), "sniff(%q)", tt.head)
	}
}

func TestTextLoader(t *testing.T) {
	model, loader, err := Load(context.Background(), "testdata/model.dump")
	require.NoError(t, err)
	assert.Equal(t, FormatText, loader.Format())

	assert.Equal(t, "model.dump", model.Meta.Name)
	assert.Nil(t, model.Meta.BaseScore)
	require.Len(t, model.Dumps, 2)
	assert.Equal(t, "0:[f0<2.5] yes=1,no=2,missing=1\n\t1:leaf=-0.3\n\t2:leaf=0.7\n", model.Dumps[0])
	assert.Contains(t, model.Dumps[1], "4:leaf=-0.12")
}

func TestTextLoaderWithoutHeaders(t *testing.T) {
	model, err := TextLoader{}.Load(context.Background(), "testdata/single.txt")
	require.NoError(t, err)
	require.Len(t, model.Dumps, 1)
	assert.Equal(t, "0:[f0<2.5] yes=1 no=2\n1:leaf=-0.3\n2:leaf=0.7\n", model.Dumps[0])
}

func TestSplitBoosters(t *testing.T) {
	dumps, err := SplitBoosters("booster[0]:\n0:leaf=1\nbooster[1]:\nbooster[2]:\n0:leaf=2")
	require.NoError(t, err)
	assert.Equal(t, []string{"0:leaf=1\n", "", "0:leaf=2"}, dumps)

	dumps, err = SplitBoosters("")
	require.NoError(t, err)
	assert.Equal(t, []string{""}, dumps)

	_, err = SplitBoosters("0:leaf=1\nbooster[0]:\n0:leaf=2\n")
	assert.ErrorContains(t, err, "line 1")

	assert.False(t, isBoosterHeader("booster[]:"))
	assert.False(t, isBoosterHeader("booster[a]:"))
	assert.True(t, isBoosterHeader("booster[12]:"))
}

func TestBundleLoader(t *testing.T) {
	model, err := BundleLoader{}.Load(context.Background(), "testdata/bundle.jsonc")
	require.NoError(t, err)

	assert.Equal(t, "churn", model.Meta.Name)
	assert.Equal(t, "reg:squarederror", model.Meta.Objective)
	require.NotNil(t, model.Meta.BaseScore)
	assert.InDelta(t, 0.25, *model.Meta.BaseScore, 1e-12)
	assert.Equal(t, 4, model.Meta.NumFeature)
	assert.Equal(t, 2, model.Meta.NumTrees)
	assert.Equal(t, []string{
		"0:[f0<2.5] yes=1,no=2,missing=1\n\t1:leaf=-0.3\n\t2:leaf=0.7\n",
		"0:leaf=0.125\n",
	}, model.Dumps)
}

func TestBundleLoaderErrors(t *testing.T) {
	_, err := BundleLoader{}.Load(context.Background(), "testdata/notrees.json")
	assert.True(t, errors.IsUnsupportedSourceFormat(err), "got %v", err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"trees": "nope"}`), 0o600))
	_, err = BundleLoader{}.Load(context.Background(), bad)
	assert.ErrorContains(t, err, "parse bundle")
}

func TestLoadHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := TextLoader{}.Load(ctx, "testdata/model.dump")
	assert.ErrorIs(t, err, context.Canceled)
}
