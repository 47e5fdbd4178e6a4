package store

import (
	"regexp"

	"github.com/avvvet/bizcard-services/internal/cardsvc/apperr"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// uniqueIndexes maps unique index names onto the field they guard. The
// *_1 names are the server defaults for indexes created without a name.
var uniqueIndexes = map[string]string{
	"email_unique":     "email",
	"email_1":          "email",
	"bizNumber_unique": "bizNumber",
	"bizNumber_1":      "bizNumber",
}

var indexNameRe = regexp.MustCompile(`index: (\S+) dup key`)

// translate maps driver errors onto the apperr taxonomy and records a stack
// for everything else.
func translate(err error, notFound, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(notFound)
	}
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Duplicate(duplicateField(err), err)
	}
	return errors.Wrap(err, msg)
}

// duplicateField names the field of the unique index a duplicate key error
// came from, using the keyPattern of the server reply and falling back to
// the index name in the message.
func duplicateField(err error) string {
	type reply struct {
		raw bson.Raw
		msg string
	}
	var replies []reply

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			replies = append(replies, reply{e.Raw, e.Message})
		}
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			replies = append(replies, reply{e.Raw, e.Message})
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		replies = append(replies, reply{ce.Raw, ce.Message})
	}

	for _, r := range replies {
		if f := keyPatternField(r.raw); f != "" {
			return f
		}
		if m := indexNameRe.FindStringSubmatch(r.msg); m != nil {
			if f, ok := uniqueIndexes[m[1]]; ok {
				return f
			}
		}
	}
	return ""
}

func keyPatternField(raw bson.Raw) string {
	if len(raw) == 0 {
		return ""
	}
	kp, ok := raw.Lookup("keyPattern").DocumentOK()
	if !ok {
		return ""
	}
	elems, err := kp.Elements()
	if err != nil || len(elems) != 1 {
		return ""
	}
	return elems[0].Key()
}
