// Package integration contains end-to-end tests for the QuantCasa price
// alert service. The full memory-mode stack is assembled in-process: HTTP
// API, observation queue, processor, engine, and file snapshot store.
package integration

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "QuantCasa Integration Suite")
}
