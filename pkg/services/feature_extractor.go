package services

import (
	"regexp"
	"strings"
	"time"

	"hunt-sales-api/pkg/models"
)

const (
	msgInvalidFeatureDate = "Invalid date format. Use YYYY-mm-dd."
	msgInvalidItemID      = "Invalid item ID format. Expected format is <characters>_<singledigit>_<3digits>."
	msgInvalidStoreID     = "Invalid store ID. Expected values CA_#, TX_#, and WI_#"
)

var (
	itemIDPattern  = regexp.MustCompile(`^[A-Z]+_[0-9]_[0-9]{3}$`)
	storeIDPattern = regexp.MustCompile(`^(CA|TX|WI)_[0-9]+$`)
)

// ParseSalesDate は YYYY-MM-DD 形式の日付を厳密に解析します。
// 存在しない日付 (例: 2023-02-29) は false を返します。
func ParseSalesDate(value string) (time.Time, bool) {
	parsed, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// ParseStoreItemQuery validates the raw query in the order date, item id,
// store id and returns the typed request.
func ParseStoreItemQuery(query models.StoreItemQuery) (models.StoreItemRequest, error) {
	date, ok := ParseSalesDate(query.Date)
	if !ok {
		return models.StoreItemRequest{}, NewInvalidInput(msgInvalidFeatureDate)
	}

	if !itemIDPattern.MatchString(query.ItemID) {
		return models.StoreItemRequest{}, NewInvalidInput(msgInvalidItemID)
	}
	parts := strings.Split(query.ItemID, "_")

	if !storeIDPattern.MatchString(query.StoreID) {
		return models.StoreItemRequest{}, NewInvalidInput(msgInvalidStoreID)
	}

	return models.StoreItemRequest{
		ItemID:  query.ItemID,
		DeptID:  parts[0] + "_" + parts[1],
		StoreID: query.StoreID,
		Date:    date,
	}, nil
}

// BuildFeatures derives the feature record of an already validated request.
// Names come from the time package and do not depend on the locale.
func BuildFeatures(req models.StoreItemRequest) models.FeatureRecord {
	return models.FeatureRecord{
		DeptID:    []string{req.DeptID},
		StoreID:   []string{req.StoreID},
		DayName:   []string{req.Date.Format("Mon")},
		MonthName: []string{req.Date.Format("Jan")},
		Year:      []string{req.Date.Format("2006")},
	}
}

// ExtractFeatures は生の入力値から予測パイプライン用の特徴量を作成します。
func ExtractFeatures(itemID, storeID, dateStr string) (models.FeatureRecord, error) {
	req, err := ParseStoreItemQuery(models.StoreItemQuery{
		ItemID:  itemID,
		StoreID: storeID,
		Date:    dateStr,
	})
	if err != nil {
		return models.FeatureRecord{}, err
	}
	return BuildFeatures(req), nil
}
