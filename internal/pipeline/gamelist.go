package pipeline

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// gameIDColumn is IdPartido in Fase, Jornada, IdPartido, IdEquipo, Local,
// Rival, Resultado.
const gameIDColumn = 2

// ReadGameList returns the unique game ids of a season game-list CSV in file
// order. The header row is optional.
func ReadGameList(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var ids []string
	seen := make(map[string]bool)
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read game list line %d", line)
		}
		if len(rec) <= gameIDColumn {
			if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
				continue
			}
			return nil, errors.Newf("game list line %d: expected at least %d columns, got %d", line, gameIDColumn+1, len(rec))
		}
		id := strings.TrimSpace(rec[gameIDColumn])
		if line == 1 && strings.EqualFold(id, "IdPartido") {
			continue
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}
