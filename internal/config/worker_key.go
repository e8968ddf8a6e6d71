package config

type WorkerKeyStruct struct {
	RelayEventsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	RelayEventsQueue: "relay_events_queue",
}
