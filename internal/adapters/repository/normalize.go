package repository

import (
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/backmarker/backmarker/internal/domain/model"
)

// The pick and result documents changed shape several times over the
// application's history:
//
//   - season picks were originally wrapped in a "races" sub-document,
//     later stored directly under the season key;
//   - a pick was originally a bare array of driver numbers, later a
//     document with picks/autopick/bonusPicks fields;
//   - result arrays were originally bare driver-number arrays where
//     position equals index+1, later arrays of structured documents.
//
// Everything is materialized into the canonical model here so the
// aggregation core never branches on storage representation.

// NormalizeSeasonPicks converts a raw season picks value into the
// canonical meeting-key -> PickRecord mapping. Unrecognizable entries are
// dropped rather than failing the user.
func NormalizeSeasonPicks(raw any) model.SeasonPicks {
	doc, ok := asDocument(raw)
	if !ok {
		return nil
	}

	// Legacy wrapper: { "races": { meetingKey: ... } }.
	if inner, exists := doc["races"]; exists {
		if innerDoc, ok := asDocument(inner); ok {
			doc = innerDoc
		}
	}

	picks := make(model.SeasonPicks, len(doc))
	for meetingKey, rawRecord := range doc {
		if record, ok := normalizePickRecord(rawRecord); ok {
			picks[meetingKey] = record
		}
	}
	if len(picks) == 0 {
		return nil
	}
	return picks
}

func normalizePickRecord(raw any) (model.PickRecord, bool) {
	// Legacy shape: a bare array of driver numbers.
	if nums, ok := asIntSlice(raw); ok {
		return model.PickRecord{Picks: nums}, true
	}

	doc, ok := asDocument(raw)
	if !ok {
		return model.PickRecord{}, false
	}

	record := model.PickRecord{}
	if nums, ok := asIntSlice(doc["picks"]); ok {
		record.Picks = nums
	}
	if autopick, ok := doc["autopick"].(bool); ok {
		record.Autopick = autopick
	}
	if bonusDoc, ok := asDocument(doc["bonusPicks"]); ok {
		bonus := model.BonusPicks{}
		if worst, ok := asInt(bonusDoc["worstDriver"]); ok {
			bonus.WorstDriver = &worst
		}
		if dnfs, ok := asInt(bonusDoc["dnfs"]); ok {
			bonus.DNFs = &dnfs
		}
		if bonus.WorstDriver != nil || bonus.DNFs != nil {
			record.BonusPicks = &bonus
		}
	}
	return record, true
}

// NormalizeResults converts a raw result array into canonical driver
// results. Legacy arrays of bare driver numbers carry position implicitly
// as index+1; structured documents are taken as-is.
func NormalizeResults(raw any) []model.DriverResult {
	arr, ok := asArray(raw)
	if !ok {
		return nil
	}

	results := make([]model.DriverResult, 0, len(arr))
	for i, item := range arr {
		if num, ok := asInt(item); ok {
			// Legacy ordering-only shape; the position is the slot in the
			// classified order. DNFs are not representable here.
			pos := i + 1
			results = append(results, model.DriverResult{
				DriverNumber:   num,
				StartPosition:  pos,
				FinishPosition: pos,
			})
			continue
		}
		if doc, ok := asDocument(item); ok {
			res := model.DriverResult{}
			if n, ok := asInt(doc["driverNumber"]); ok {
				res.DriverNumber = n
			}
			if n, ok := asInt(doc["startPosition"]); ok {
				res.StartPosition = n
			}
			if n, ok := asInt(doc["finishPosition"]); ok {
				res.FinishPosition = n
			}
			if res.DriverNumber != 0 {
				results = append(results, res)
			}
		}
	}
	if len(results) == 0 {
		return nil
	}
	return results
}

// NormalizeMeetingKey renders a stored meeting key (string or number,
// depending on the document's vintage) as the canonical string form.
func NormalizeMeetingKey(raw any) string {
	if s, ok := raw.(string); ok {
		return s
	}
	if n, ok := asInt(raw); ok {
		return strconv.Itoa(n)
	}
	return fmt.Sprintf("%v", raw)
}

func asDocument(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case bson.M:
		return v, true
	case map[string]any:
		return v, true
	case bson.D:
		doc := make(map[string]any, len(v))
		for _, e := range v {
			doc[e.Key] = e.Value
		}
		return doc, true
	default:
		return nil, false
	}
}

func asArray(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case bson.A:
		return v, true
	case []any:
		return v, true
	default:
		return nil, false
	}
}

func asIntSlice(raw any) ([]int, bool) {
	arr, ok := asArray(raw)
	if !ok {
		return nil, false
	}
	nums := make([]int, 0, len(arr))
	for _, item := range arr {
		n, ok := asInt(item)
		if !ok {
			return nil, false
		}
		nums = append(nums, n)
	}
	return nums, true
}

func asInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case primitive.Decimal128:
		if n, err := strconv.Atoi(v.String()); err == nil {
			return n, true
		}
		return 0, false
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
		return 0, false
	default:
		return 0, false
	}
}
