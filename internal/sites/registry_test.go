package sites_test

import (
	"testing"

	"github.com/ffmirror/ffmirror-go/internal/sites"
	"github.com/ffmirror/ffmirror-go/internal/sites/mocksite"
)

func TestRegisterAndGet(t *testing.T) {
	sites.Reset()
	adapter := mocksite.New()
	sites.Register(adapter)

	got, ok := sites.Get(mocksite.Key)
	if !ok {
		t.Fatal("Expected adapter to be registered")
	}
	if got != adapter {
		t.Error("Get returned a different adapter")
	}

	if _, ok := sites.Get("nosuchsite"); ok {
		t.Error("Expected lookup of unknown key to fail")
	}

	infos := sites.All()
	if len(infos) != 1 || infos[0].Key != mocksite.Key {
		t.Errorf("Unexpected All() result: %+v", infos)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	sites.Reset()
	sites.Register(mocksite.New())

	defer func() {
		if recover() == nil {
			t.Error("Expected duplicate registration to panic")
		}
	}()
	sites.Register(mocksite.New())
}
