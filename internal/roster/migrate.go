package roster

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Roster files come in three schema versions:
//
//   - 0: flat camelCase competitors with "cohort" naming and sentinel division strings;
//   - 1: the same layout renamed to "category", still with sentinel divisions;
//   - 2: the canonical schema of State.
//
// Older documents are migrated step by step on their raw form before decoding.

type document = map[string]any

type migration func(doc document) (document, error)

var migrations = []migration{
	0: migrateV0ToV1,
	1: migrateV1ToV2,
}

func Load(r io.Reader) (*State, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if doc == nil {
		doc = document{}
	}
	version, err := detectVersion(doc)
	if err != nil {
		return nil, err
	}
	if version > CurrentVersion {
		return nil, fmt.Errorf("roster version %d is newer than supported %d", version, CurrentVersion)
	}
	for v := version; v < CurrentVersion; v++ {
		doc, err = migrations[v](doc)
		if err != nil {
			return nil, fmt.Errorf("migrate roster from v%d: %w", v, err)
		}
	}
	doc["version"] = CurrentVersion

	data, err = yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-encode roster: %w", err)
	}
	state := NewState()
	if err := yaml.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	Prepare(state)
	if err := Validate(state); err != nil {
		return nil, err
	}
	return state, nil
}

// Prepare brings a decoded state into the form the rest of the program relies on: every
// division resolved, every entry normalized, every competitor with an id and a cached
// height.
func Prepare(s *State) {
	s.Version = CurrentVersion
	for i := range s.Competitors {
		c := &s.Competitors[i]
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.ResolveDivisions()
		c.Forms.SubGroup = SubGroupNone
		c.Forms.Normalize()
		c.Sparring.Normalize()
		switch {
		case c.Height.TotalInches() != 0:
			c.HeightInches = c.Height.TotalInches()
		case c.HeightInches != 0:
			c.Height = Height{Feet: c.HeightInches / 12, Inches: c.HeightInches % 12}
		}
	}
	for i := range s.Categories {
		if s.Categories[i].ID == "" {
			s.Categories[i].ID = uuid.NewString()
		}
		if s.Categories[i].NumPools < 1 {
			s.Categories[i].NumPools = 1
		}
	}
}

func Save(w io.Writer, s *State) error {
	out := s.Clone()
	out.Version = CurrentVersion
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	return nil
}

func detectVersion(doc document) (int, error) {
	if raw, ok := doc["version"]; ok {
		v, ok := raw.(int)
		if !ok || v < 0 {
			return 0, fmt.Errorf("bad roster version %v", raw)
		}
		return v, nil
	}
	if _, ok := doc["cohorts"]; ok {
		return 0, nil
	}
	for _, c := range listOf(doc["competitors"]) {
		for k := range c {
			if k == "formsCohortId" || k == "sparringCohortId" {
				return 0, nil
			}
		}
	}
	return 1, nil
}

func listOf(raw any) []document {
	items, _ := raw.([]any)
	res := make([]document, 0, len(items))
	for _, item := range items {
		if m, ok := item.(document); ok {
			res = append(res, m)
		}
	}
	return res
}

func rename(m document, from, to string) {
	v, ok := m[from]
	if !ok {
		return
	}
	delete(m, from)
	if _, exists := m[to]; !exists {
		m[to] = v
	}
}

func migrateV0ToV1(doc document) (document, error) {
	rename(doc, "cohorts", "categories")
	rename(doc, "cohortRingMappings", "categoryRingMappings")
	for _, c := range listOf(doc["competitors"]) {
		rename(c, "formsCohortId", "formsCategoryId")
		rename(c, "formsCohortPool", "formsPool")
		rename(c, "sparringCohortId", "sparringCategoryId")
		rename(c, "sparringCohortPool", "sparringPool")
		rename(c, "lastFormsCohortId", "lastFormsCategoryId")
		rename(c, "lastFormsCohortPool", "lastFormsPool")
		rename(c, "lastSparringCohortId", "lastSparringCategoryId")
		rename(c, "lastSparringCohortPool", "lastSparringPool")
		// v0 had a single division for forms.
		rename(c, "division", "formsDivision")
	}
	for _, m := range listOf(doc["categoryRingMappings"]) {
		rename(m, "cohortId", "categoryId")
		rename(m, "cohortPool", "pool")
	}
	return doc, nil
}

func migrateV1ToV2(doc document) (document, error) {
	out := document{}
	if cfg, ok := doc["config"].(document); ok {
		out["config"] = cfg
	} else {
		out["config"] = document{
			"name":     stringOf(doc["tournamentName"]),
			"date":     stringOf(doc["tournamentDate"]),
			"location": stringOf(doc["location"]),
		}
	}

	var comps []any
	for _, c := range listOf(doc["competitors"]) {
		comps = append(comps, document{
			"id":            stringOf(c["id"]),
			"first-name":    stringOf(c["firstName"]),
			"last-name":     stringOf(c["lastName"]),
			"age":           c["age"],
			"gender":        stringOf(c["gender"]),
			"height":        document{"feet": c["heightFeet"], "inches": c["heightInches"]},
			"height-inches": c["totalHeightInches"],
			"school":        stringOf(c["school"]),
			"forms":         legacyEntry(c, "forms", "competingForms"),
			"sparring":      legacyEntry(c, "sparring", "competingSparring"),
		})
	}
	out["competitors"] = comps

	var cats []any
	for _, c := range listOf(doc["categories"]) {
		cats = append(cats, document{
			"id":          stringOf(c["id"]),
			"name":        stringOf(c["name"]),
			"division":    stringOf(c["division"]),
			"gender":      stringOf(c["gender"]),
			"min-age":     c["minAge"],
			"max-age":     c["maxAge"],
			"pools":       c["numPools"],
			"competitors": c["competitorIds"],
		})
	}
	out["categories"] = cats

	var mappings []any
	for _, m := range listOf(doc["categoryRingMappings"]) {
		mappings = append(mappings, document{
			"category": stringOf(m["categoryId"]),
			"pool":     stringOf(m["pool"]),
			"ring":     stringOf(m["physicalRingId"]),
		})
	}
	out["ring-mappings"] = mappings
	return out, nil
}

func legacyEntry(c document, prefix string, competingKey string) document {
	last := "last" + strings.ToUpper(prefix[:1]) + prefix[1:]
	competing, _ := c[competingKey].(bool)
	e := document{
		"division":      divisionFromLegacy(stringOf(c[prefix+"Division"])).String(),
		"category":      stringOf(c[prefix+"CategoryId"]),
		"pool":          stringOf(c[prefix+"Pool"]),
		"competing":     competing,
		"last-category": stringOf(c[last+"CategoryId"]),
		"last-pool":     stringOf(c[last+"Pool"]),
	}
	// Old files used 0 for "not ranked yet".
	if rank, ok := c[prefix+"Rank"].(int); ok && rank > 0 {
		e["rank"] = rank
	}
	if prefix == "sparring" {
		e["subgroup"] = strings.ToLower(stringOf(c["sparringAltRing"]))
	}
	return e
}

func stringOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
