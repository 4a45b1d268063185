package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"impall.dev/pkg/impall/internal/domain"
	domainmocks "impall.dev/pkg/impall/internal/domain/mocks"
	m "impall.dev/pkg/impall/internal/model"
)

func TestListCmd_PassesFilters(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd, _ := newTestRootCmd(t, newListCmd(), mockWorkflow)

	mockWorkflow.On("List", mock.Anything, mock.MatchedBy(func(args domain.ListArgs) bool {
		return assert.ObjectsAreEqual([]m.Path{"src"}, args.Config.Roots) &&
			assert.ObjectsAreEqual([]string{"pkg.*"}, args.Config.Include) &&
			assert.ObjectsAreEqual([]string{"pkg.tests.**"}, args.Config.Exclude) &&
			args.Config.RecurseAll
	})).Return(nil).Once()

	cmd.SetArgs([]string{"list", "src", "-i", "pkg.*", "-e", "pkg.tests.**", "-a"})

	require.NoError(t, cmd.Execute())
}

func TestListCmd_Error(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	cmd, _ := newTestRootCmd(t, newListCmd(), mockWorkflow)

	mockWorkflow.On("List", mock.Anything, mock.Anything).Return(errors.New("walk failed")).Once()

	cmd.SetArgs([]string{"list"})
	err := cmd.Execute()

	assert.EqualError(t, err, "walk failed")
}
