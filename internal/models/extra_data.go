package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

func extraDataMap(raw datatypes.JSON) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func extraDataString(raw datatypes.JSON, key string) string {
	m := extraDataMap(raw)
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func extraDataTags(raw datatypes.JSON) []string {
	m := extraDataMap(raw)
	if m == nil {
		return nil
	}
	list, ok := m["tags"].([]interface{})
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}
