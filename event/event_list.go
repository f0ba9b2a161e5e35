// Copyright 2024 Block, Inc.

package event

// Runtime events (non-collector)
const (
	BOOT                = "host-boot"
	BOOT_CONFIG_LOADING = "host-boot-config-loading"
	BOOT_CONFIG_LOADED  = "host-boot-config-loaded"
	BOOT_CONFIG_ERROR   = "host-boot-config-error"

	HOST_RUN      = "host-run"
	HOST_RUN_WAIT = "host-run-wait"
	HOST_SHUTDOWN = "host-shutting-down"

	REGISTER_COLLECTOR = "register-collector"
)

// Collector events
const (
	RUNNER_START             = "runner-start"
	RUNNER_CHECK_ERROR       = "runner-check-error"
	RUNNER_CREATE_ERROR      = "runner-create-error"
	RUNNER_UPDATE_ERROR      = "runner-update-error"
	RUNNER_RETRY             = "runner-retry"
	RUNNER_RETRIES_EXHAUSTED = "runner-retries-exhausted"
	RUNNER_PANIC             = "runner-panic"
	RUNNER_STOP              = "runner-stop"

	PROTO_INVALID_CHART     = "proto-invalid-chart"
	PROTO_INVALID_DIMENSION = "proto-invalid-dimension"
	PROTO_INVALID_VALUE     = "proto-invalid-value"
	PROTO_COMMIT_ERROR      = "proto-commit-error"

	SOURCE_FETCH_ERROR = "source-fetch-error"
	SOURCE_NO_CHARTS   = "source-no-charts"
)
