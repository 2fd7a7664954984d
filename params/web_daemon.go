package params

type ListenerConfig struct {
	// Network must be "tcp", "tcp4", "tcp6", "unix" or "unixpacket".
	Network string
	Address string
}

type WebDaemonConfig struct {
	ListenerConfig
	DataDir string
	Worker  *WorkerConfig
}

func DefaultWebListenerConfig() ListenerConfig {
	return ListenerConfig{
		Network: "tcp",
		Address: "localhost:3000",
	}
}

func DefaultWebDaemonConfig() *WebDaemonConfig {
	return &WebDaemonConfig{
		DataDir:        DatadirRoot,
		ListenerConfig: DefaultWebListenerConfig(),
		Worker:         DefaultWorkerConfig(),
	}
}

func DefaultTestWebDaemonConfig() *WebDaemonConfig {
	w := DefaultWorkerConfig()
	w.Source = SourceNone
	return &WebDaemonConfig{
		DataDir: "",
		ListenerConfig: ListenerConfig{
			Network: "tcp",
			Address: "localhost:3333",
		},
		Worker: w,
	}
}
