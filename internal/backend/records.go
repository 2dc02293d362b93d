package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// MedicalRecords lists the caller's medical records.
func (c *Client) MedicalRecords(ctx context.Context, token string) ([]MedicalRecord, error) {
	data, err := c.call(ctx, http.MethodGet, "/medical-records", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeRecords(data)
}

// PatientRecords lists records for a specific patient. Admin only.
func (c *Client) PatientRecords(ctx context.Context, token, patientID string) ([]MedicalRecord, error) {
	data, err := c.call(ctx, http.MethodGet, "/medical-records/patient/"+patientID, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeRecords(data)
}

// CreateMedicalRecord adds a record entry. Admin only.
func (c *Client) CreateMedicalRecord(ctx context.Context, token string, fields map[string]any) error {
	_, err := c.call(ctx, http.MethodPost, "/medical-records", token, fields)
	return err
}

func decodeRecords(data json.RawMessage) ([]MedicalRecord, error) {
	var wrapped struct {
		Records []MedicalRecord `json:"records"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Records != nil {
		return wrapped.Records, nil
	}
	var list []MedicalRecord
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("backend: decode medical records: %w", err)
	}
	return list, nil
}
