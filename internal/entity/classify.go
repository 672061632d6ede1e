package entity

// Classify asigna la temperatura del lead a partir de capital, experiencia y
// disponibilidad horaria. Es una cascada de sobreescrituras, NO una tabla de
// prioridades: la última regla que matchea gana. En particular, el ajuste
// final por "Poco Tiempo" puede enfriar un warm/hot de las reglas intermedias
// pero nunca baja al hot que viene por capital alto. Ese comportamiento está
// calcado del embudo original y el CRM depende de él; no lo "arregles".
func Classify(capital Capital, experience Experience, timeSlot TimeSlot) Status {
	status := StatusCold

	isHighCapital := capital == Capital2000a10000 || capital == CapitalMas10000
	isMediumCapital := capital == Capital500a2000
	hasExperience := experience == ExperienceIntermedio || experience == ExperienceAvanzado

	if isHighCapital {
		status = StatusHot
	} else if isMediumCapital && hasExperience {
		status = StatusHot
	} else if isMediumCapital && experience == ExperienceNovato {
		status = StatusWarm
	} else if capital == CapitalMenos500 && experience == ExperienceAvanzado {
		status = StatusWarm
	} else {
		status = StatusCold
	}

	if timeSlot == TimePocoTiempo && !isHighCapital {
		status = StatusCold
	}

	return status
}
