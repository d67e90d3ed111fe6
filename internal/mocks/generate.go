package mocks

//go:generate mockery --name ObjectStore --srcpkg github.com/LydiaBrothers/filmslides/internal/dataset --output ./dataset --outpkg datasetmocks --with-expecter
