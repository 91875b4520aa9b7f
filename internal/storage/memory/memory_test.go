package memory

import (
	"testing"

	"github.com/recipereverie-droid/Budget-Tracker/internal/storage"
	"github.com/recipereverie-droid/Budget-Tracker/internal/storage/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		return New()
	})
}
