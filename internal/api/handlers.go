package api

import (
	"github.com/gin-gonic/gin"

	"github.com/valter-silva-au/taskdesk/internal/core"
)

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.svc.ListTasks(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, tasks)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	in, err := core.DecodeTaskInput(c.Request.Body)
	if err != nil {
		s.fail(c, err)
		return
	}

	task, err := s.svc.CreateTask(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, task)
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.svc.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	in, err := core.DecodeTaskInput(c.Request.Body)
	if err != nil {
		s.fail(c, err)
		return
	}

	task, err := s.svc.UpdateTask(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.svc.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	success(c, gin.H{"message": msgTaskDeleted})
}
