package memory

import (
	"testing"

	"github.com/code-payments/hashlock-escrow/pkg/data/escrow/tests"
)

func TestEscrowMemoryStore(t *testing.T) {
	testStore := New()
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunTests(t, testStore, teardown)
}
