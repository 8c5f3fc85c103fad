package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCreateApp(t *testing.T) {
	tests := map[string]struct {
		cfg   *Config
		error error
	}{
		"invalid config": {
			cfg:   &Config{},
			error: errors.New("service name is required\nstop timeout is required"),
		},
		"valid config": {
			cfg: &Config{
				ServiceName: "LiteTable Sink",
				StopTimeout: 30 * time.Second,
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)

			got, err := CreateApp(tc.cfg)
			if tc.error != nil {
				req.Error(err)
				req.Nil(got)
				req.Equal(tc.error.Error(), err.Error())
				return
			}

			req.NoError(err)
			req.NotNil(got)
		})
	}
}

func testDep(ctrl *gomock.Controller, name string) *MockDependency {
	dep := NewMockDependency(ctrl)
	dep.EXPECT().Name().Return(name).AnyTimes()
	return dep
}

func TestApp_Run(t *testing.T) {
	cfg := &Config{ServiceName: "LiteTable Sink", StopTimeout: 2 * time.Second}

	t.Run("run can only be called once", func(t *testing.T) {
		req := require.New(t)

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		dep := testDep(ctrl, "Dep")
		dep.EXPECT().Start().Return(nil)
		dep.EXPECT().Stop().Return(nil)

		a, err := CreateApp(cfg, dep)
		req.NoError(err)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		req.NoError(a.Run(ctx))

		err = a.Run(ctx)
		req.Error(err)
		req.Contains(err.Error(), "run has already been called")
	})

	t.Run("a failed dependency brings the app down", func(t *testing.T) {
		req := require.New(t)

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		bad := testDep(ctrl, "Bad Dep")
		bad.EXPECT().Start().Return(errors.New("no store"))
		bad.EXPECT().Stop().Return(nil)

		a, err := CreateApp(cfg, bad)
		req.NoError(err)

		err = a.Run(context.Background())
		req.Error(err)
		req.Contains(err.Error(), "Bad Dep")
		req.Contains(err.Error(), "no store")
	})

	t.Run("a panicking dependency brings the app down", func(t *testing.T) {
		req := require.New(t)

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		dep := testDep(ctrl, "Panicky Dep")
		dep.EXPECT().Start().DoAndReturn(func() error {
			panic("kaboom")
		})
		dep.EXPECT().Stop().Return(nil)

		a, err := CreateApp(cfg, dep)
		req.NoError(err)

		err = a.Run(context.Background())
		req.Error(err)
		req.Contains(err.Error(), "panic in Start()")
		req.Contains(err.Error(), "kaboom")
	})

	t.Run("dependencies stop in reverse order", func(t *testing.T) {
		req := require.New(t)

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		var order []string
		first := testDep(ctrl, "Sink")
		first.EXPECT().Start().Return(nil)
		first.EXPECT().Stop().DoAndReturn(func() error {
			order = append(order, "Sink")
			return nil
		})

		second := testDep(ctrl, "Receiver")
		second.EXPECT().Start().Return(nil)
		second.EXPECT().Stop().DoAndReturn(func() error {
			order = append(order, "Receiver")
			return nil
		})

		a, err := CreateApp(cfg, first, second)
		req.NoError(err)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		req.NoError(a.Run(ctx))
		req.Equal([]string{"Receiver", "Sink"}, order)
	})

	t.Run("stop failures are returned", func(t *testing.T) {
		req := require.New(t)

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		dep := testDep(ctrl, "Stubborn Dep")
		dep.EXPECT().Start().Return(nil)
		dep.EXPECT().Stop().Return(errors.New("still flushing"))

		a, err := CreateApp(cfg, dep)
		req.NoError(err)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err = a.Run(ctx)
		req.Error(err)
		req.Contains(err.Error(), "Stubborn Dep")
		req.Contains(err.Error(), "still flushing")
	})

	t.Run("shutdown is bounded by the stop timeout", func(t *testing.T) {
		req := require.New(t)

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		dep := testDep(ctrl, "Hung Dep")
		dep.EXPECT().Start().Return(nil)
		dep.EXPECT().Stop().DoAndReturn(func() error {
			time.Sleep(time.Second)
			return nil
		})

		a, err := CreateApp(&Config{
			ServiceName: "LiteTable Sink",
			StopTimeout: 50 * time.Millisecond,
		}, dep)
		req.NoError(err)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err = a.Run(ctx)
		req.Error(err)
		req.Contains(err.Error(), "timed out stopping dependencies")
	})
}
