package implementation

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
)

// mapMongoError converts driver errors into the shared taxonomy so
// callers never have to inspect driver types.
func mapMongoError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return agtmodels.E(agtmodels.KindNotFound, notFoundMsg)
	}
	if mongo.IsDuplicateKeyError(err) {
		return agtmodels.Wrap(agtmodels.KindInvalidInput, "duplicate key", err)
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return agtmodels.Wrap(agtmodels.KindUnavailable, "datastore unavailable", err)
	}
	return agtmodels.Wrap(agtmodels.KindUnknown, "datastore error", err)
}

// docString reads the first key present in doc, coercing to string.
// Documents written by older collector versions use alias keys
// (e.g. "farmName" vs "name"), so lookups go through here.
func docString(doc bson.M, keys ...string) string {
	for _, key := range keys {
		v, ok := doc[key]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			return s
		case fmt.Stringer:
			return s.String()
		}
	}
	return ""
}

// docID reads a document identifier, which may be stored as a plain
// string or as an ObjectID depending on which writer created the row.
func docID(doc bson.M, keys ...string) string {
	for _, key := range keys {
		v, ok := doc[key]
		if !ok || v == nil {
			continue
		}
		switch id := v.(type) {
		case string:
			return id
		case primitive.ObjectID:
			return id.Hex()
		}
	}
	return ""
}

func docInt(doc bson.M, keys ...string) int {
	for _, key := range keys {
		v, ok := doc[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case int:
			return n
		case int32:
			return int(n)
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 0
}

func docFloat(doc bson.M, keys ...string) *float64 {
	for _, key := range keys {
		v, ok := doc[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			f := n
			return &f
		case float32:
			f := float64(n)
			return &f
		case int:
			f := float64(n)
			return &f
		case int32:
			f := float64(n)
			return &f
		case int64:
			f := float64(n)
			return &f
		}
	}
	return nil
}

func docTime(doc bson.M, keys ...string) *time.Time {
	for _, key := range keys {
		v, ok := doc[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case primitive.DateTime:
			tt := t.Time().UTC()
			return &tt
		case time.Time:
			tt := t.UTC()
			return &tt
		case string:
			if tt, err := time.Parse(time.RFC3339, t); err == nil {
				tt = tt.UTC()
				return &tt
			}
		}
	}
	return nil
}

func docStringSlice(doc bson.M, keys ...string) []string {
	for _, key := range keys {
		v, ok := doc[key]
		if !ok || v == nil {
			continue
		}
		switch arr := v.(type) {
		case []string:
			return arr
		case bson.A:
			out := make([]string, 0, len(arr))
			for _, item := range arr {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []interface{}:
			out := make([]string, 0, len(arr))
			for _, item := range arr {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
			return out
		}
	}
	return nil
}

func docSub(doc bson.M, key string) bson.M {
	v, ok := doc[key]
	if !ok || v == nil {
		return nil
	}
	switch sub := v.(type) {
	case bson.M:
		return sub
	case bson.D:
		out := bson.M{}
		for _, e := range sub {
			out[e.Key] = e.Value
		}
		return out
	case map[string]interface{}:
		return bson.M(sub)
	}
	return nil
}
