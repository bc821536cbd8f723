package handler

import (
	"encoding/json"

	"profession-server/internal/models"
)

// progressFrame - промежуточный кадр потока прогресса (NDJSON).
type progressFrame struct {
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

// errorFrame - терминальный кадр при сбое. Отдается тем же каналом,
// что и успех, а не голой транспортной ошибкой.
type errorFrame struct {
	Error string `json:"error"`
	Done  bool   `json:"done"`
}

// finalFrame собирает терминальный кадр успеха: поля артефакта плюс
// done, cached и progress=100.
func finalFrame(artifact *models.Profession, cached bool) (map[string]interface{}, error) {
	data, err := json.Marshal(artifact)
	if err != nil {
		return nil, err
	}
	frame := make(map[string]interface{})
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, err
	}
	frame["message"] = "Готово"
	frame["progress"] = 100
	frame["done"] = true
	frame["cached"] = cached
	return frame, nil
}

// APIError - стандартизированный ответ об ошибке.
type APIError struct {
	Error string `json:"error"`
}
