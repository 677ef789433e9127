package nav

import (
	"context"
	"errors"
	"testing"
)

type fakeScreen struct {
	focused []Params
	err     error
}

func (f *fakeScreen) Focus(_ context.Context, p Params) error {
	f.focused = append(f.focused, p)
	return f.err
}

func TestNavigate_FocusesEveryTime(t *testing.T) {
	n := New()
	list, info := &fakeScreen{}, &fakeScreen{}
	n.Register(Products, list)
	n.Register(ProductInfo, info)
	ctx := context.Background()

	if err := n.Navigate(ctx, Products, nil); err != nil {
		t.Fatal(err)
	}
	if err := n.Navigate(ctx, ProductInfo, Params{ParamProductID: "42"}); err != nil {
		t.Fatal(err)
	}
	if got := info.focused[0][ParamProductID]; got != "42" {
		t.Errorf("productId = %q", got)
	}
	if n.Current() != ProductInfo {
		t.Errorf("Current = %q", n.Current())
	}

	ok, err := n.Back(ctx)
	if !ok || err != nil {
		t.Fatalf("Back = %v, %v", ok, err)
	}
	if n.Current() != Products {
		t.Errorf("Current after Back = %q", n.Current())
	}
	if len(list.focused) != 2 {
		t.Errorf("list focused %d times, want 2", len(list.focused))
	}
}

func TestBack_AtRoot(t *testing.T) {
	n := New()
	n.Register(Login, &fakeScreen{})
	_ = n.Navigate(context.Background(), Login, nil)
	ok, err := n.Back(context.Background())
	if ok || err != nil {
		t.Fatalf("Back at root = %v, %v", ok, err)
	}
	if n.Current() != Login {
		t.Errorf("Current = %q", n.Current())
	}
}

func TestNavigate_UnknownRoute(t *testing.T) {
	n := New()
	if err := n.Navigate(context.Background(), Products, nil); err == nil {
		t.Fatal("expected error")
	}
	if n.Current() != "" {
		t.Errorf("Current = %q, want empty", n.Current())
	}
}

func TestReset_ClearsStackAndNotifies(t *testing.T) {
	n := New()
	n.Register(Login, &fakeScreen{})
	boom := errors.New("boom")
	n.Register(Products, &fakeScreen{err: boom})

	var seen []Route
	n.OnChange(func(r Route) { seen = append(seen, r) })

	ctx := context.Background()
	_ = n.Navigate(ctx, Login, nil)
	if err := n.Reset(ctx, Products, nil); !errors.Is(err, boom) {
		t.Fatalf("Reset err = %v", err)
	}
	if n.Current() != Products {
		t.Errorf("current %q, want %q", n.Current(), Products)
	}
	if ok, _ := n.Back(ctx); ok {
		t.Error("Reset must leave a single route on the stack")
	}
	if len(seen) != 2 || seen[1] != Products {
		t.Errorf("listener saw %v", seen)
	}
}
