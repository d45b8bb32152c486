package apify

import (
	"errors"
	"fmt"
)

// taskInput is the actor task input. Only the cruise line, ship and date
// vary; the remaining filters are pinned so the actor returns one page
// for the exact sailing window.
type taskInput struct {
	CruiseLine       string `json:"cruise_line"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	ShipName         string `json:"ship_name"`
	MaxNumberOfPages int    `json:"max_number_of_pages"`
	CruiseLength     string `json:"cruise_length"`
	DeparturePort    string `json:"departure_port"`
	Destination      string `json:"destination"`
	ShipType         string `json:"ship_type"`
	PortOfCall       string `json:"port_of_call"`
}

func newTaskInput(in RunInput) taskInput {
	return taskInput{
		CruiseLine:       in.CruiseLine,
		StartDate:        in.ISOSailDate,
		EndDate:          in.ISOSailDate,
		ShipName:         in.ShipName,
		MaxNumberOfPages: 1,
		CruiseLength:     "0",
		DeparturePort:    "",
		Destination:      "0",
		ShipType:         "0",
		PortOfCall:       "",
	}
}

// runResponse is the envelope returned by the run endpoint.
type runResponse struct {
	Data struct {
		ID               string `json:"id"`
		Status           string `json:"status"`
		DefaultDatasetID string `json:"defaultDatasetId"`
	} `json:"data"`
}

// ErrMissingCredentials is returned when the API token or task id is blank.
var ErrMissingCredentials = errors.New("apify token and task id are required")

// ErrEmptyDataset is returned when a run's dataset is empty or not a JSON array.
var ErrEmptyDataset = errors.New("apify dataset is empty")

// MissingCredentialsError names the credential fields that were blank.
type MissingCredentialsError struct {
	Fields []string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("%s (missing: %v)", ErrMissingCredentials.Error(), e.Fields)
}

// Unwrap lets errors.Is match ErrMissingCredentials.
func (*MissingCredentialsError) Unwrap() error { return ErrMissingCredentials }

// ScrapeRunFailedError is returned when the task run could not be started
// or finished without a dataset.
type ScrapeRunFailedError struct {
	Status int
	Body   string
}

func (e *ScrapeRunFailedError) Error() string {
	return fmt.Sprintf("apify run failed (status %d): %s", e.Status, e.Body)
}

// DatasetFetchFailedError is returned when the run's dataset could not be read.
type DatasetFetchFailedError struct {
	Status int
	Body   string
}

func (e *DatasetFetchFailedError) Error() string {
	return fmt.Sprintf("apify dataset fetch failed (status %d): %s", e.Status, e.Body)
}
