package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanManageIsStrict(t *testing.T) {
	assert.True(t, CanManage(LevelAdmin, LevelEditor))
	assert.False(t, CanManage(LevelEditor, LevelAdmin))

	// Equal levels can never manage each other, in either direction.
	assert.False(t, CanManage(LevelEditor, LevelEditor))
	assert.False(t, CanManage(LevelSuperAdmin, LevelSuperAdmin))
}

func TestValidateCustomLevel(t *testing.T) {
	assert.NoError(t, ValidateCustomLevel(MinCustomLevel))
	assert.NoError(t, ValidateCustomLevel(MaxCustomLevel))
	assert.Error(t, ValidateCustomLevel(0))
	assert.Error(t, ValidateCustomLevel(LevelSuperAdmin))
	assert.Error(t, ValidateCustomLevel(-5))
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("60")
	assert.NoError(t, err)
	assert.Equal(t, LevelEditor, l)

	l, err = ParseLevel(" 100 ")
	assert.NoError(t, err)
	assert.Equal(t, LevelSuperAdmin, l)

	_, err = ParseLevel("101")
	assert.Error(t, err)
	_, err = ParseLevel("-1")
	assert.Error(t, err)
	_, err = ParseLevel("editor")
	assert.Error(t, err)
}

func TestSuggestLevel(t *testing.T) {
	tests := []struct {
		name string
		want Level
	}{
		{"Admin", LevelAdmin},
		{"Site Administrator", LevelAdmin},
		{"Editor", LevelEditor},
		{"Senior Content Editor", LevelEditor},
		{"Contributor", LevelContributor},
		{"Guest Author", LevelContributor},
		{"Viewer", LevelViewer},
		{"Read Only", LevelViewer},
		{"Bookkeeper", DefaultSuggestedLevel},
		{"", DefaultSuggestedLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestLevel(tt.name))
		})
	}
}

func TestSuggestLevelRuleOrder(t *testing.T) {
	// "admin" outranks "editor" when both appear in a name.
	assert.Equal(t, LevelAdmin, SuggestLevel("Editor Admin"))
}
