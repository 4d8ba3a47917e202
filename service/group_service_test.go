package service

import (
	"context"
	"testing"

	"budgetbet/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func createTestGroupService() (GroupService, *MockUnitOfWork, *MockUserRepository, *MockGroupRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockGroupRepo := new(MockGroupRepository)

	mockUoW.SetRepositories(mockUserRepo, mockGroupRepo, nil, nil, nil)
	mockFactory.On("Create").Return(mockUoW)

	return NewGroupService(mockFactory), mockUoW, mockUserRepo, mockGroupRepo
}

func TestGroupService_CreateGroup_OwnerAlwaysMember(t *testing.T) {
	ctx := context.Background()
	svc, mockUoW, mockUserRepo, mockGroupRepo := createTestGroupService()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByAuthID", ctx, "alice").Return(&models.User{AuthID: "alice", Username: "alice"}, nil)
	mockUserRepo.On("GetByUsername", ctx, "bob").Return(&models.User{AuthID: "bob-id", Username: "bob"}, nil)
	mockGroupRepo.On("Create", ctx, mock.MatchedBy(func(g *models.Group) bool {
		return g.Name == "Roomies" && g.OwnerAuthID == "alice"
	}), []string{"alice", "bob-id"}).Return(nil)
	mockUserRepo.On("GetPublicByAuthIDs", ctx, []string{"alice", "bob-id"}).Return([]models.UserPublic{
		{AuthID: "alice", Username: "alice"},
		{AuthID: "bob-id", Username: "bob"},
	}, nil)

	detail, err := svc.CreateGroup(ctx, "Roomies", "alice", []string{"bob"})

	assert.NoError(t, err)
	assert.Len(t, detail.Members, 2)
	assert.True(t, detail.HasMember("alice"))
	mockGroupRepo.AssertExpectations(t)
}

func TestGroupService_CreateGroup_DeduplicatesMembers(t *testing.T) {
	ctx := context.Background()
	svc, mockUoW, mockUserRepo, mockGroupRepo := createTestGroupService()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByAuthID", ctx, "alice").Return(&models.User{AuthID: "alice", Username: "alice"}, nil)
	// The owner listed by username and a username repeated twice both collapse
	mockUserRepo.On("GetByUsername", ctx, "alice").Return(&models.User{AuthID: "alice", Username: "alice"}, nil)
	mockUserRepo.On("GetByUsername", ctx, "bob").Return(&models.User{AuthID: "bob-id", Username: "bob"}, nil)
	mockGroupRepo.On("Create", ctx, mock.Anything, []string{"alice", "bob-id"}).Return(nil)
	mockUserRepo.On("GetPublicByAuthIDs", ctx, []string{"alice", "bob-id"}).Return([]models.UserPublic{
		{AuthID: "alice"}, {AuthID: "bob-id"},
	}, nil)

	detail, err := svc.CreateGroup(ctx, "Roomies", "alice", []string{"alice", "bob", "bob"})

	assert.NoError(t, err)
	assert.Len(t, detail.Members, 2)
}

func TestGroupService_CreateGroup_UnknownUsernameNotFound(t *testing.T) {
	ctx := context.Background()
	svc, mockUoW, mockUserRepo, mockGroupRepo := createTestGroupService()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByAuthID", ctx, "alice").Return(&models.User{AuthID: "alice"}, nil)
	mockUserRepo.On("GetByUsername", ctx, "ghost").Return(nil, nil)

	_, err := svc.CreateGroup(ctx, "Roomies", "alice", []string{"ghost"})

	assert.True(t, IsKind(err, KindNotFound))
	mockGroupRepo.AssertNotCalled(t, "Create")
}

func TestGroupService_CreateGroup_RejectsEmptyName(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := createTestGroupService()

	_, err := svc.CreateGroup(ctx, "   ", "alice", nil)

	assert.True(t, IsKind(err, KindInvalidInput))
}

func TestGroupService_AddMember_ResolvesUsername(t *testing.T) {
	ctx := context.Background()
	svc, mockUoW, mockUserRepo, mockGroupRepo := createTestGroupService()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	group := &models.Group{ID: 7, Name: "Roomies", OwnerAuthID: "alice"}
	mockGroupRepo.On("GetByID", ctx, int64(7)).Return(group, nil)
	mockUserRepo.On("GetByUsername", ctx, "carol").Return(&models.User{AuthID: "carol-id", Username: "carol"}, nil)
	mockGroupRepo.On("AddMember", ctx, int64(7), "carol-id").Return(nil)
	mockGroupRepo.On("GetMemberAuthIDs", ctx, int64(7)).Return([]string{"alice", "carol-id"}, nil)
	mockUserRepo.On("GetPublicByAuthIDs", ctx, []string{"alice", "carol-id"}).Return([]models.UserPublic{
		{AuthID: "alice"}, {AuthID: "carol-id", Username: "carol"},
	}, nil)

	detail, err := svc.AddMember(ctx, 7, "carol")

	assert.NoError(t, err)
	assert.True(t, detail.HasMember("carol-id"))
	mockGroupRepo.AssertExpectations(t)
}

func TestGroupService_AddMember_GroupNotFound(t *testing.T) {
	ctx := context.Background()
	svc, mockUoW, _, mockGroupRepo := createTestGroupService()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGroupRepo.On("GetByID", ctx, int64(99)).Return(nil, nil)

	_, err := svc.AddMember(ctx, 99, "carol")

	assert.True(t, IsKind(err, KindNotFound))
}

func TestGroupService_ListGroups_HydratesMembers(t *testing.T) {
	ctx := context.Background()
	svc, mockUoW, mockUserRepo, mockGroupRepo := createTestGroupService()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGroupRepo.On("GetByMember", ctx, "alice").Return([]*models.Group{
		{ID: 1, Name: "Roomies"},
		{ID: 2, Name: "Office"},
	}, nil)
	mockGroupRepo.On("GetMemberAuthIDs", ctx, int64(1)).Return([]string{"alice", "bob"}, nil)
	mockGroupRepo.On("GetMemberAuthIDs", ctx, int64(2)).Return([]string{"alice"}, nil)
	mockUserRepo.On("GetPublicByAuthIDs", ctx, []string{"alice", "bob"}).Return([]models.UserPublic{
		{AuthID: "alice"}, {AuthID: "bob"},
	}, nil)
	mockUserRepo.On("GetPublicByAuthIDs", ctx, []string{"alice"}).Return([]models.UserPublic{
		{AuthID: "alice"},
	}, nil)

	details, err := svc.ListGroups(ctx, "alice")

	assert.NoError(t, err)
	assert.Len(t, details, 2)
	assert.Len(t, details[0].Members, 2)
	assert.Len(t, details[1].Members, 1)
}
