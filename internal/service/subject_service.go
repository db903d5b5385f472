package service

import (
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/repository"
	"eduassess_backend/internal/util"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type SubjectRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Code        string `json:"code" binding:"required,max=20"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

type SubjectService struct {
	Repo *repository.SubjectRepository
}

func NewSubjectService(repo *repository.SubjectRepository) *SubjectService {
	return &SubjectService{Repo: repo}
}

// List 只返回启用的科目
func (s *SubjectService) List() ([]model.Subject, error) {
	return s.Repo.List(true)
}

func (s *SubjectService) Get(id uint) (*model.Subject, error) {
	subject, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, mapNotFound(err, "subject")
	}
	return subject, nil
}

func (s *SubjectService) Create(req SubjectRequest, userID uint) (*model.Subject, error) {
	code := strings.TrimSpace(req.Code)
	if err := s.ensureCodeFree(code, 0); err != nil {
		return nil, err
	}

	subject := &model.Subject{
		Name:        strings.TrimSpace(req.Name),
		Code:        code,
		Description: req.Description,
		IsActive:    true,
		CreatedBy:   userID,
	}
	if req.IsActive != nil {
		subject.IsActive = *req.IsActive
	}
	if err := s.Repo.Create(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *SubjectService) Update(id uint, req SubjectRequest) (*model.Subject, error) {
	subject, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	if err := s.ensureCodeFree(code, id); err != nil {
		return nil, err
	}

	subject.Name = strings.TrimSpace(req.Name)
	subject.Code = code
	subject.Description = req.Description
	if req.IsActive != nil {
		subject.IsActive = *req.IsActive
	}
	if err := s.Repo.Update(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// Delete 仍被题目或测评引用的科目不能删除
func (s *SubjectService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	refs, err := s.Repo.CountReferences(id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return util.ErrSubjectHasReferences
	}
	return s.Repo.Delete(id)
}

func (s *SubjectService) ensureCodeFree(code string, selfID uint) error {
	existing, err := s.Repo.FindByCode(code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return util.ErrDuplicateCode
	}
	return nil
}
