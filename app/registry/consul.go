package registry

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/consul/api"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-user/config"
)

const (
	checkInterval = "10s"
	checkTimeout  = "5s"
)

// Registrar announces the service in a directory for the lifetime of the process.
type Registrar interface {
	Register(ctx context.Context) error
	Deregister(ctx context.Context) error
}

type ConsulRegistrar struct {
	agent       *api.Agent
	serviceName string
	port        int
}

// New returns a Consul backed registrar, or a no-op one when no Consul host
// is configured.
func New(cfg config.RegistryConfig, httpPort string) (Registrar, error) {
	if !cfg.Enabled() {
		return noopRegistrar{}, nil
	}
	return NewConsulRegistrar(cfg, httpPort)
}

func NewConsulRegistrar(cfg config.RegistryConfig, httpPort string) (*ConsulRegistrar, error) {
	port, err := strconv.Atoi(httpPort)
	if err != nil {
		return nil, fmt.Errorf("invalid service port %q: %w", httpPort, err)
	}

	clientCfg := api.DefaultConfig()
	clientCfg.Address = net.JoinHostPort(cfg.ConsulHost, strconv.Itoa(cfg.ConsulPort))
	client, err := api.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}

	return &ConsulRegistrar{
		agent:       client.Agent(),
		serviceName: cfg.ServiceName,
		port:        port,
	}, nil
}

func (r *ConsulRegistrar) Register(ctx context.Context) error {
	registration := &api.AgentServiceRegistration{
		ID:      r.serviceName,
		Name:    r.serviceName,
		Address: r.serviceName,
		Port:    r.port,
		Checks: api.AgentServiceChecks{
			{
				Name:     r.serviceName + " health check",
				HTTP:     fmt.Sprintf("http://%s:%d/health", r.serviceName, r.port),
				Interval: checkInterval,
				Timeout:  checkTimeout,
			},
		},
	}

	if err := r.agent.ServiceRegisterOpts(registration, api.ServiceRegisterOpts{}.WithContext(ctx)); err != nil {
		return fmt.Errorf("register %s with consul: %w", r.serviceName, err)
	}

	logrus.WithField("service", r.serviceName).Info("Registered service with Consul")
	return nil
}

func (r *ConsulRegistrar) Deregister(ctx context.Context) error {
	opts := (&api.QueryOptions{}).WithContext(ctx)
	if err := r.agent.ServiceDeregisterOpts(r.serviceName, opts); err != nil {
		return fmt.Errorf("deregister %s from consul: %w", r.serviceName, err)
	}

	logrus.WithField("service", r.serviceName).Info("Deregistered service from Consul")
	return nil
}

type noopRegistrar struct{}

func (noopRegistrar) Register(context.Context) error   { return nil }
func (noopRegistrar) Deregister(context.Context) error { return nil }
