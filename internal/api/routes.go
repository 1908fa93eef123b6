package api

import (
	"net/http"
)

const basePath = "/api/v1"

func SetupRoutes(svc *TrainService) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+basePath+"/trains/{tz}", svc.GetTrain)
	mux.HandleFunc("GET "+basePath+"/trains", svc.SearchTrains)
	mux.HandleFunc("GET "+basePath+"/classes/{classId}/trains", svc.ListClassTrains)

	return mux
}
