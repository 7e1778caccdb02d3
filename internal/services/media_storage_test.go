package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finance-tracker/internal/config"

	"github.com/stretchr/testify/suite"
)

type MediaStorageTestSuite struct {
	suite.Suite
	root    string
	storage MediaStorageInterface
}

func (s *MediaStorageTestSuite) SetupTest() {
	s.root = s.T().TempDir()
	s.storage = NewLocalMediaStorage(config.MediaConfig{Root: s.root, URLPrefix: "/media"})
}

func TestMediaStorageSuite(t *testing.T) {
	suite.Run(t, new(MediaStorageTestSuite))
}

func (s *MediaStorageTestSuite) TestSaveAndDelete() {
	relPath, err := s.storage.Save("profile_pics", "Me.PNG", strings.NewReader("image-bytes"))
	s.Require().NoError(err)
	s.True(strings.HasPrefix(relPath, "profile_pics/"))
	s.True(strings.HasSuffix(relPath, ".png"))

	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(relPath)))
	s.Require().NoError(err)
	s.Equal("image-bytes", string(data))

	s.Equal("/media/"+relPath, s.storage.URL(relPath))

	s.NoError(s.storage.Delete(relPath))
	_, err = os.Stat(filepath.Join(s.root, filepath.FromSlash(relPath)))
	s.True(os.IsNotExist(err))

	s.NoError(s.storage.Delete(relPath), "deleting a missing file is a no-op")
}

func (s *MediaStorageTestSuite) TestSaveGeneratesDistinctNames() {
	first, err := s.storage.Save("profile_pics", "a.jpg", strings.NewReader("1"))
	s.Require().NoError(err)
	second, err := s.storage.Save("profile_pics", "a.jpg", strings.NewReader("2"))
	s.Require().NoError(err)
	s.NotEqual(first, second)
}

func (s *MediaStorageTestSuite) TestRejectsTraversal() {
	s.ErrorIs(s.storage.Delete("../outside.txt"), ErrInvalidMediaPath)
	s.ErrorIs(s.storage.Delete("profile_pics/../../etc/passwd"), ErrInvalidMediaPath)
	s.NoError(s.storage.Delete(""))
}

func (s *MediaStorageTestSuite) TestURLOfEmptyPath() {
	s.Empty(s.storage.URL(""))
}
