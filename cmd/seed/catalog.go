package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"

	"github.com/stemsi/exam-engine/internal/model"
	"gopkg.in/yaml.v3"
)

// catalog is what the seeder writes: exam templates and the question bank.
type catalog struct {
	Exams     []model.Exam
	Questions []model.Question
}

// seedFile is the YAML layout. Omitted ids are generated and omitted
// is_active flags default to true.
type seedFile struct {
	Exams []struct {
		ID              string `yaml:"id"`
		Title           string `yaml:"title"`
		DurationSeconds int    `yaml:"duration_seconds"`
		TotalQuestions  int    `yaml:"total_questions"`
		IsActive        *bool  `yaml:"is_active"`
	} `yaml:"exams"`
	Questions []struct {
		ID           string   `yaml:"id"`
		Text         string   `yaml:"text"`
		Options      []string `yaml:"options"`
		CorrectIndex int      `yaml:"correct_index"`
		Tags         []string `yaml:"tags"`
		Difficulty   string   `yaml:"difficulty"`
		IsActive     *bool    `yaml:"is_active"`
	} `yaml:"questions"`
}

func loadCatalogFile(path string) (*catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseCatalog(raw)
}

func parseCatalog(raw []byte) (*catalog, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	c := &catalog{}
	for i, e := range f.Exams {
		id, err := idOrNew(e.ID)
		if err != nil {
			return nil, fmt.Errorf("exams[%d]: %w", i, err)
		}
		c.Exams = append(c.Exams, model.Exam{
			ID:              id,
			Title:           e.Title,
			DurationSeconds: e.DurationSeconds,
			TotalQuestions:  e.TotalQuestions,
			IsActive:        boolOr(e.IsActive, true),
		})
	}
	for i, q := range f.Questions {
		id, err := idOrNew(q.ID)
		if err != nil {
			return nil, fmt.Errorf("questions[%d]: %w", i, err)
		}
		difficulty := model.Difficulty(q.Difficulty)
		if difficulty == "" {
			difficulty = model.DifficultyEasy
		}
		c.Questions = append(c.Questions, model.Question{
			ID:           id,
			Text:         q.Text,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Tags:         q.Tags,
			Difficulty:   difficulty,
			IsActive:     boolOr(q.IsActive, true),
		})
	}
	return c, c.validate()
}

func idOrNew(raw string) (model.ID, error) {
	if raw == "" {
		return model.NewID(), nil
	}
	return model.ParseID(raw)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// defaultCatalog mirrors the stock demo data: one 30 minute exam drawing
// 20 questions from a bank of 50 with random answer keys.
func defaultCatalog(rng *rand.Rand) *catalog {
	c := &catalog{
		Exams: []model.Exam{{
			ID:              model.NewID(),
			Title:           "General MCQ",
			DurationSeconds: 1800,
			TotalQuestions:  20,
			IsActive:        true,
		}},
	}

	for i := 1; i <= 50; i++ {
		difficulty := model.DifficultyEasy
		switch {
		case i%3 == 0:
			difficulty = model.DifficultyHard
		case i%2 == 0:
			difficulty = model.DifficultyMedium
		}

		options := []string{
			fmt.Sprintf("Option A %d", i),
			fmt.Sprintf("Option B %d", i),
			fmt.Sprintf("Option C %d", i),
			fmt.Sprintf("Option D %d", i),
		}
		c.Questions = append(c.Questions, model.Question{
			ID:           model.NewID(),
			Text:         fmt.Sprintf("Sample question #%d: What is the correct option?", i),
			Options:      options,
			CorrectIndex: rng.Intn(len(options)),
			Tags:         []string{"sample"},
			Difficulty:   difficulty,
			IsActive:     true,
		})
	}
	return c
}

// validate checks every record and that each active exam can be started.
func (c *catalog) validate() error {
	var errs []error
	active := 0
	for i := range c.Questions {
		if err := c.Questions[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("questions[%d]: %w", i, err))
		}
		if c.Questions[i].IsActive {
			active++
		}
	}
	for i := range c.Exams {
		e := &c.Exams[i]
		if err := e.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("exams[%d]: %w", i, err))
			continue
		}
		if e.IsActive && e.TotalQuestions > active {
			errs = append(errs, fmt.Errorf("exams[%d]: needs %d questions, bank has %d active", i, e.TotalQuestions, active))
		}
	}
	return errors.Join(errs...)
}
