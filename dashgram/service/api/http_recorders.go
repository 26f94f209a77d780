package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dashgram/go-client/dashgram"
	"github.com/dashgram/go-client/dashgram/dtos"
	"github.com/dashgram/go-client/dashgram/service"
	"github.com/splitio/go-toolkit/v5/logging"
)

type httpRecorderBase struct {
	client   *HTTPClient
	logger   logging.LoggerInterface
	metadata *dashgram.ClientMetadata
}

func (h *httpRecorderBase) recordRaw(url string, data []byte) ([]byte, error) {
	headers := make(map[string]string)
	headers["DashgramClientVersion"] = h.metadata.SDKVersion
	headers["DashgramMachineIP"] = h.metadata.MachineIP
	if h.metadata.MachineName == "" && h.metadata.MachineIP != "" {
		headers["DashgramMachineName"] = fmt.Sprintf("ip-%s", strings.Replace(h.metadata.MachineIP, ".", "-", -1))
	} else {
		headers["DashgramMachineName"] = h.metadata.MachineName
	}
	return h.client.Post(url, data, headers)
}

// HTTPEventsRecorder is a struct responsible for submitting event bulks to the backend
type HTTPEventsRecorder struct {
	httpRecorderBase
	projectID string
}

// Record sends a slice of dtos.EventDTO to the backend as one batch. The batch
// carries a fresh uuid so the backend can detect duplicate submissions caused
// by client-side retries. On success it returns a report listing the subset of
// events the backend rejected, if any.
func (i *HTTPEventsRecorder) Record(events []dtos.EventDTO) (*service.DeliveryReport, error) {
	batch := dtos.BatchDTO{
		ProjectID: i.projectID,
		BatchID:   uuid.New().String(),
		SentAt:    time.Now().UnixMilli(),
		Events:    events,
	}

	data, err := json.Marshal(batch)
	if err != nil {
		i.logger.Error("Error marshaling JSON", err.Error())
		return nil, fmt.Errorf("%w: %v", service.ErrMalformedPayload, err)
	}

	respBody, err := i.recordRaw("/events/bulk", data)
	if err != nil {
		i.logger.Error("Error posting events", err.Error())
		return nil, err
	}

	report := &service.DeliveryReport{BatchID: batch.BatchID}
	if len(respBody) == 0 {
		return report, nil
	}

	var reply dtos.BatchReplyDTO
	if err := json.Unmarshal(respBody, &reply); err != nil {
		// An unparseable body on a 2xx still means the batch was accepted
		i.logger.Warning("Could not parse bulk reply, assuming full acceptance", err.Error())
		return report, nil
	}

	for _, index := range reply.Rejected {
		if index >= 0 && index < len(events) {
			report.Rejected = append(report.Rejected, events[index])
		}
	}
	return report, nil
}

// NewHTTPEventsRecorder instantiates an HTTPEventsRecorder
func NewHTTPEventsRecorder(
	projectID string,
	eventsURL string,
	timeout time.Duration,
	metadata *dashgram.ClientMetadata,
	logger logging.LoggerInterface,
) *HTTPEventsRecorder {
	client := NewHTTPClient(projectID, eventsURL, timeout, logger)
	return &HTTPEventsRecorder{
		httpRecorderBase: httpRecorderBase{
			client:   client,
			logger:   logger,
			metadata: metadata,
		},
		projectID: projectID,
	}
}
