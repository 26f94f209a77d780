package client

import (
	"fmt"
	"sync"

	"github.com/splitio/go-toolkit/v5/logging"
)

var factoryInstances = make(map[string]int64)
var mutexInstances sync.Mutex

// setFactory registers a new factory for the given project and warns when more
// than one is alive, since a single shared instance is the intended usage.
func setFactory(projectID string, logger logging.LoggerInterface) {
	mutexInstances.Lock()
	defer mutexInstances.Unlock()

	counter := factoryInstances[projectID]
	if counter > 0 {
		logger.Warning(fmt.Sprintf(
			"Factory Instantiation: You already have %d factory for this projectID. We recommend keeping only one "+
				"instance of the factory at all times (Singleton pattern) and reusing it throughout your application.",
			counter,
		))
	} else if len(factoryInstances) > 0 {
		logger.Warning(
			"Factory Instantiation: You already have an instance of the Dashgram factory. Make sure you definitely want " +
				"this additional instance. We recommend keeping only one instance of the factory at all times (Singleton " +
				"pattern) and reusing it throughout your application.",
		)
	}
	factoryInstances[projectID] = counter + 1
}

// removeInstanceFromTracker unregisters a destroyed factory
func removeInstanceFromTracker(projectID string) {
	mutexInstances.Lock()
	defer mutexInstances.Unlock()

	counter := factoryInstances[projectID]
	if counter <= 1 {
		delete(factoryInstances, projectID)
		return
	}
	factoryInstances[projectID] = counter - 1
}
