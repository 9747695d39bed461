package gameday

// Endpoints — базовые URL сервисов платформы.
type Endpoints struct {
	API        string
	Controller string
	Prometheus string
	Grafana    string
	Loki       string
	Alloy      string
}

// InternalEndpoints — адреса внутри docker сети Atlas.
func InternalEndpoints() Endpoints {
	return Endpoints{
		API:        "http://rust-api:3000",
		Controller: "http://go-controller:8081",
		Prometheus: "http://prometheus:9090",
		Grafana:    "http://grafana:3000",
		Loki:       "http://loki:3100",
		Alloy:      "http://alloy:12345",
	}
}

// ExternalEndpoints — адреса с хоста (через ingress и проброшенные порты).
func ExternalEndpoints() Endpoints {
	return Endpoints{
		API:        "http://localhost",
		Controller: "http://localhost:8081",
		Prometheus: "http://localhost:9090",
		Grafana:    "http://localhost:3000",
		Loki:       "http://localhost:3100",
		Alloy:      "http://localhost:12345",
	}
}

func (e Endpoints) syncURL() string {
	return e.API + "/manuscript/sync"
}

// healthChecks — порядок важен, он же порядок вывода.
func (e Endpoints) healthChecks() []healthCheck {
	return []healthCheck{
		{"rust-api", e.API + "/health"},
		{"go-controller", e.Controller + "/health"},
		{"prometheus", e.Prometheus + "/-/ready"},
		{"grafana", e.Grafana + "/api/health"},
		{"loki", e.Loki + "/ready"},
		{"alloy", e.Alloy + "/-/ready"},
	}
}

type healthCheck struct {
	service string
	url     string
}
