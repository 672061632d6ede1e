package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHighCapitalAlwaysHot(t *testing.T) {
	// Capital alto gana siempre, incluso con poco tiempo disponible.
	for _, capital := range []Capital{Capital2000a10000, CapitalMas10000} {
		for _, exp := range []Experience{ExperienceNovato, ExperienceIntermedio, ExperienceAvanzado} {
			for _, slot := range []TimeSlot{TimeUnaDosHoras, TimeMedioTiempo, TimePocoTiempo} {
				assert.Equal(t, StatusHot, Classify(capital, exp, slot),
					"capital=%s exp=%s time=%s", capital, exp, slot)
			}
		}
	}
}

func TestClassifyMediumCapital(t *testing.T) {
	assert.Equal(t, StatusHot, Classify(Capital500a2000, ExperienceIntermedio, TimeUnaDosHoras))
	assert.Equal(t, StatusHot, Classify(Capital500a2000, ExperienceAvanzado, TimeMedioTiempo))
	assert.Equal(t, StatusWarm, Classify(Capital500a2000, ExperienceNovato, TimeUnaDosHoras))
}

func TestClassifyLowCapital(t *testing.T) {
	assert.Equal(t, StatusWarm, Classify(CapitalMenos500, ExperienceAvanzado, TimeUnaDosHoras))
	assert.Equal(t, StatusCold, Classify(CapitalMenos500, ExperienceNovato, TimeUnaDosHoras))
	assert.Equal(t, StatusCold, Classify(CapitalMenos500, ExperienceIntermedio, TimeMedioTiempo))
}

func TestClassifyPocoTiempoDowngrades(t *testing.T) {
	// Poco tiempo enfría todo lo que no sea capital alto, por bueno que sea
	// el resto del perfil.
	assert.Equal(t, StatusCold, Classify(Capital500a2000, ExperienceAvanzado, TimePocoTiempo))
	assert.Equal(t, StatusCold, Classify(Capital500a2000, ExperienceIntermedio, TimePocoTiempo))
	assert.Equal(t, StatusCold, Classify(CapitalMenos500, ExperienceAvanzado, TimePocoTiempo))
}

func TestClassifyIsTotal(t *testing.T) {
	// Cualquier combinación, incluidas las vacías, produce un status válido.
	statuses := map[Status]bool{StatusCold: true, StatusWarm: true, StatusHot: true}

	capitals := []Capital{"", CapitalMenos500, Capital500a2000, Capital2000a10000, CapitalMas10000}
	experiences := []Experience{"", ExperienceNovato, ExperienceIntermedio, ExperienceAvanzado}
	slots := []TimeSlot{"", TimeUnaDosHoras, TimeMedioTiempo, TimePocoTiempo}

	for _, c := range capitals {
		for _, e := range experiences {
			for _, s := range slots {
				got := Classify(c, e, s)
				assert.True(t, statuses[got], "capital=%q exp=%q time=%q dio %q", c, e, s, got)
			}
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	first := Classify(Capital500a2000, ExperienceNovato, TimeMedioTiempo)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(Capital500a2000, ExperienceNovato, TimeMedioTiempo))
	}
}
