package types

type ControllerType string

var ControllerTypeNobo = ControllerType("nobo")
var ControllerTypeDummy = ControllerType("dummy")
