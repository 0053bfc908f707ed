package catalog

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	items map[uuid.UUID]*Template
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Template)}
}

func (m *mockRepo) conflicts(t *Template) bool {
	for _, existing := range m.items {
		if existing.ID != t.ID && (existing.TestName == t.TestName || existing.TestCode == t.TestCode) {
			return true
		}
	}
	return false
}

func (m *mockRepo) Create(_ context.Context, t *Template) error {
	t.ID = uuid.New()
	if m.conflicts(t) {
		return ErrDuplicate
	}
	m.items[t.ID] = t
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Template, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (m *mockRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*Template, error) {
	out := []*Template{}
	for _, id := range ids {
		if t, ok := m.items[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockRepo) Update(_ context.Context, t *Template) error {
	if _, ok := m.items[t.ID]; !ok {
		return ErrNotFound
	}
	if m.conflicts(t) {
		return ErrDuplicate
	}
	m.items[t.ID] = t
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]*Template, error) {
	out := []*Template{}
	for _, t := range m.items {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TestCode < out[j].TestCode })
	return out, nil
}

func (m *mockRepo) Search(ctx context.Context, q string, limit int) ([]*Summary, error) {
	all, _ := m.List(ctx)
	out := []*Summary{}
	needle := strings.ToLower(q)
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.TestName), needle) ||
			strings.Contains(strings.ToLower(t.Category), needle) ||
			strings.HasPrefix(strconv.Itoa(t.TestCode), q) {
			out = append(out, &Summary{ID: t.ID, TestCode: t.TestCode, TestName: t.TestName, TestPrice: t.TestPrice, Category: t.Category})
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func newTestService() *Service {
	return NewService(newMockRepo())
}

func cbc() *Template {
	return &Template{
		TestCode:  1101,
		TestName:  "CBC",
		TestPrice: 800,
		Category:  "Hematology",
		Fields:    []Field{{FieldName: "Hemoglobin", Unit: "g/dL", Range: "12-16"}},
	}
}

func TestService_CreateDefaults(t *testing.T) {
	svc := newTestService()
	tpl := cbc()

	if err := svc.Create(context.Background(), tpl); err != nil {
		t.Fatalf("create: %v", err)
	}
	if tpl.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
	if tpl.TestType != TestTypeRoutine {
		t.Errorf("expected routine default, got %q", tpl.TestType)
	}
	if tpl.Fields[0].FieldType != "string" {
		t.Errorf("expected string field type default, got %q", tpl.Fields[0].FieldType)
	}
}

func TestService_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Template)
	}{
		{"blank name", func(t *Template) { t.TestName = "  " }},
		{"zero code", func(t *Template) { t.TestCode = 0 }},
		{"negative price", func(t *Template) { t.TestPrice = -1 }},
		{"unknown type", func(t *Template) { t.TestType = "urgent" }},
		{"unnamed field", func(t *Template) { t.Fields = []Field{{Unit: "mg"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := cbc()
			tt.mutate(tpl)
			err := newTestService().Create(context.Background(), tpl)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestService_CreateDuplicate(t *testing.T) {
	svc := newTestService()
	svc.Create(context.Background(), cbc())

	dup := cbc()
	dup.TestCode = 9999
	if err := svc.Create(context.Background(), dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for same name, got %v", err)
	}
}

func TestService_Search(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.Create(ctx, cbc())
	svc.Create(ctx, &Template{TestCode: 2201, TestName: "Lipid Profile", TestPrice: 1500, Category: "Chemistry", TestType: TestTypeSpecial})

	blank, err := svc.Search(ctx, "   ")
	if err != nil || len(blank) != 0 {
		t.Fatalf("expected empty result for blank query, got %v %v", blank, err)
	}

	byCode, _ := svc.Search(ctx, "110")
	if len(byCode) != 1 || byCode[0].TestName != "CBC" {
		t.Errorf("expected CBC by code prefix, got %+v", byCode)
	}

	byCategory, _ := svc.Search(ctx, "chem")
	if len(byCategory) != 1 || byCategory[0].TestName != "Lipid Profile" {
		t.Errorf("expected Lipid Profile by category, got %+v", byCategory)
	}
}

func TestParseTestType(t *testing.T) {
	tests := []struct {
		in   string
		want TestType
		ok   bool
	}{
		{"", TestTypeRoutine, true},
		{"routine", TestTypeRoutine, true},
		{"special", TestTypeSpecial, true},
		{"Special", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseTestType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseTestType(%q) = %q, %v", tt.in, got, ok)
		}
	}
}
