package recipestore

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/food-assistant/pkg/lookup"
)

const importBatch = 500

var ErrMissingColumn = errors.New("missing column")

// ImportCSV loads recipes from a CSV with Title, Ingredients and Instructions columns. Other columns are ignored,
// rows without a title are skipped. It returns the number of recipes inserted.
func (s *Store) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return 0, errors.Wrap(err, "unable to read header")
	}

	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	idx := make([]int, 3)
	for i, name := range []string{"title", "ingredients", "instructions"} {
		col, ok := columns[name]
		if !ok {
			return 0, errors.Wrap(ErrMissingColumn, name)
		}
		idx[i] = col
	}

	field := func(record []string, col int) string {
		if col >= len(record) {
			return ""
		}

		return strings.TrimSpace(record[col])
	}

	total := 0
	batch := make([]lookup.Recipe, 0, importBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := s.Insert(ctx, batch...)
		if err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]

		return nil
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return total, errors.Wrap(err, "unable to read record")
		}

		recipe := lookup.Recipe{
			Title:        field(record, idx[0]),
			Ingredients:  field(record, idx[1]),
			Instructions: field(record, idx[2]),
		}
		if recipe.Title == "" {
			continue
		}
		batch = append(batch, recipe)
		if len(batch) == importBatch {
			err := flush()
			if err != nil {
				return total, err
			}
		}
	}

	err = flush()
	if err != nil {
		return total, err
	}

	return total, nil
}
