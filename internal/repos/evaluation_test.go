package repos

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/campstack/evalboard-backend/internal/types"
)

func TestUpsertUpdatesBumpsVersion(t *testing.T) {
	rating := 4
	updates := upsertUpdates(EvaluationUpsert{
		Key: types.EvaluationKey{
			LeaderID:   uuid.New(),
			KidID:      uuid.New(),
			QuestionID: uuid.New(),
		},
		Rating: &rating,
	})

	expr, ok := updates["version"].(clause.Expr)
	if !ok {
		t.Fatalf("version: want=SQL expression got=%T", updates["version"])
	}
	if expr.SQL != "version + 1" {
		t.Fatalf("version expression: want=%q got=%q", "version + 1", expr.SQL)
	}
	if _, ok := updates["last_modified"].(time.Time); !ok {
		t.Fatalf("last_modified missing from merge")
	}
}

func TestUpsertUpdatesMergesOnlySetFields(t *testing.T) {
	rating := 5
	comment := "shares well during activities"
	submitted := time.Now().UTC()

	full := upsertUpdates(EvaluationUpsert{
		Rating:      &rating,
		Comment:     &comment,
		SubmittedAt: &submitted,
	})
	if full["rating"] != rating {
		t.Fatalf("rating: want=%d got=%v", rating, full["rating"])
	}
	if full["comment"] != comment {
		t.Fatalf("comment: want=%q got=%v", comment, full["comment"])
	}
	if full["is_completed"] != true {
		t.Fatalf("is_completed: want=true got=%v", full["is_completed"])
	}
	if full["submitted_at"] != submitted {
		t.Fatalf("submitted_at: want=%v got=%v", submitted, full["submitted_at"])
	}

	sparse := upsertUpdates(EvaluationUpsert{})
	for _, column := range []string{"rating", "comment", "submitted_at", "is_completed", "subcamp_id", "auto_save_meta"} {
		if _, present := sparse[column]; present {
			t.Fatalf("empty upsert must not touch %s", column)
		}
	}
}
