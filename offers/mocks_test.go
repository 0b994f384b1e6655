package offers

import (
	"context"

	"github.com/shopstr/greenlight-backend/interfaces"
	"github.com/stretchr/testify/mock"
)

type MockCredentialSource struct {
	mock.Mock
}

func (m *MockCredentialSource) Load(ctx context.Context) (interfaces.CredentialPair, error) {
	args := m.Called(ctx)
	return args.Get(0).(interfaces.CredentialPair), args.Error(1)
}

type MockNodeHostingClient struct {
	mock.Mock
}

func (m *MockNodeHostingClient) NewScheduler(ctx context.Context, network interfaces.Network, creds interfaces.CredentialPair) (interfaces.Scheduler, error) {
	args := m.Called(ctx, network, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(interfaces.Scheduler), args.Error(1)
}

func (m *MockNodeHostingClient) NewSigner(seed []byte, network interfaces.Network, creds interfaces.CredentialPair) (interfaces.Signer, error) {
	args := m.Called(seed, network, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(interfaces.Signer), args.Error(1)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Register(ctx context.Context, signer interfaces.Signer, inviteCode string) (*interfaces.Registration, error) {
	args := m.Called(ctx, signer, inviteCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.Registration), args.Error(1)
}

func (m *MockScheduler) Recover(ctx context.Context, signer interfaces.Signer) (*interfaces.Registration, error) {
	args := m.Called(ctx, signer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.Registration), args.Error(1)
}

func (m *MockScheduler) Authenticate(ctx context.Context, creds interfaces.DeviceCredentials) (interfaces.AuthenticatedScheduler, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(interfaces.AuthenticatedScheduler), args.Error(1)
}

type MockAuthenticatedScheduler struct {
	mock.Mock
}

func (m *MockAuthenticatedScheduler) Node(ctx context.Context) (interfaces.Node, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(interfaces.Node), args.Error(1)
}

type MockSigner struct {
	mock.Mock
}

func (m *MockSigner) NodeID() interfaces.NodeID {
	return m.Called().Get(0).(interfaces.NodeID)
}

func (m *MockSigner) Network() interfaces.Network {
	return m.Called().Get(0).(interfaces.Network)
}

func (m *MockSigner) Sign(msg []byte) ([]byte, error) {
	args := m.Called(msg)
	return args.Get(0).([]byte), args.Error(1)
}

type MockNode struct {
	mock.Mock
}

func (m *MockNode) Offer(ctx context.Context, req *interfaces.OfferRequest) (*interfaces.OfferResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.OfferResponse), args.Error(1)
}
